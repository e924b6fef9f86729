package roster

import (
	"errors"
	"fmt"
	"math"
)

// DefaultLevel is given to attending players that are not on the roster.
const DefaultLevel = 1.0

// ErrInvalidLevel is reported for roster lines whose last token is not a number.
var ErrInvalidLevel = errors.New("invalid level")

// Attendee is a parsed roster entry.
type Attendee struct {
	Name  string  `json:"name"`
	Level float64 `json:"level"`
}

// Valid reports whether the attendee carries a usable level.
func (a Attendee) Valid() bool {
	return !math.IsNaN(a.Level) && !math.IsInf(a.Level, 0)
}

// LineError describes a roster line that could not be parsed.
type LineError struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Err  error  `json:"-"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Trend compares a player's current level with the level the list was loaded with.
type Trend string

const (
	Unchanged Trend = "unchanged"
	// Improved means the level went down, level 1 being the top tier.
	Improved Trend = "improved"
	Declined Trend = "declined"
)
