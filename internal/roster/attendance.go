package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type matchConfig struct {
	foldNames bool
}

// MatchOption configures MatchAttendance.
type MatchOption func(*matchConfig)

// WithFoldedNames adds a second lookup that ignores diacritics and repeated whitespace
// for names that have no exact case-insensitive match.
func WithFoldedNames() MatchOption {
	return func(c *matchConfig) {
		c.foldNames = true
	}
}

// MatchAttendance resolves each attendance line against the roster.
// Names are compared case-insensitively after trimming. A name with no match is
// added at DefaultLevel, so guests not on the roster still play.
func MatchAttendance(roster []Attendee, attendanceText string, opts ...MatchOption) []Attendee {
	cfg := matchConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var attending []Attendee
	for _, raw := range strings.Split(attendanceText, "\n") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if found, ok := find(roster, name, strings.ToLower); ok {
			attending = append(attending, found)
			continue
		}
		if cfg.foldNames {
			if found, ok := find(roster, name, foldName); ok {
				attending = append(attending, found)
				continue
			}
		}
		attending = append(attending, Attendee{Name: name, Level: DefaultLevel})
	}
	return attending
}

func find(roster []Attendee, name string, key func(string) string) (Attendee, bool) {
	want := key(name)
	for _, a := range roster {
		if key(a.Name) == want {
			return a, true
		}
	}
	return Attendee{}, false
}

func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}
