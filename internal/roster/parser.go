package roster

import (
	"math"
	"strconv"
	"strings"
)

// Parse converts roster text into attendees, one per non-blank line.
// The last whitespace separated token of a line is the level, everything before it the name.
// A level that does not parse is NaN, never zero.
func Parse(text string) []Attendee {
	attendees, _ := ParseLines(text)
	return attendees
}

// ParseLines is Parse that also reports every line whose level did not parse.
func ParseLines(text string) ([]Attendee, []LineError) {
	var attendees []Attendee
	var issues []LineError
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		attendee := parseLine(line)
		if !attendee.Valid() {
			issues = append(issues, LineError{Line: i + 1, Text: line, Err: ErrInvalidLevel})
		}
		attendees = append(attendees, attendee)
	}
	return attendees, issues
}

func parseLine(line string) Attendee {
	fields := strings.Fields(line)
	last := len(fields) - 1
	return Attendee{
		Name:  strings.Join(fields[:last], " "),
		Level: ParseLevel(fields[last]),
	}
}

// ParseLevel parses a level token, accepting a comma as decimal separator.
func ParseLevel(token string) float64 {
	level, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(token), ",", ".", 1), 64)
	if err != nil {
		return math.NaN()
	}
	return level
}

// FormatLevel renders a level the way Format writes it.
func FormatLevel(level float64) string {
	return strconv.FormatFloat(level, 'f', -1, 64)
}

// Format renders attendees back into roster text.
func Format(attendees []Attendee) string {
	lines := make([]string, 0, len(attendees))
	for _, a := range attendees {
		lines = append(lines, a.Name+" "+FormatLevel(a.Level))
	}
	return strings.Join(lines, "\n")
}

// SetLevel rewrites the level of the first line whose name matches case-insensitively.
// It reports false when no line matched.
func SetLevel(text, name string, level float64) (string, bool) {
	target := strings.ToLower(strings.Join(strings.Fields(name), " "))
	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		fields := strings.Fields(raw)
		if len(fields) < 2 {
			continue
		}
		if strings.ToLower(strings.Join(fields[:len(fields)-1], " ")) != target {
			continue
		}
		lines[i] = strings.Join(fields[:len(fields)-1], " ") + " " + FormatLevel(level)
		return strings.Join(lines, "\n"), true
	}
	return text, false
}

// RestoreLevels rewrites the levels of text to those in initial. The n-th line naming a
// player takes the n-th entry of initial with that name, or its last entry when initial
// holds fewer. Lines naming no one in initial are left as they are.
func RestoreLevels(text string, initial []Attendee) string {
	byName := make(map[string][]float64, len(initial))
	for _, a := range initial {
		key := strings.ToLower(a.Name)
		byName[key] = append(byName[key], a.Level)
	}
	seen := make(map[string]int, len(byName))

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		fields := strings.Fields(raw)
		if len(fields) < 2 {
			continue
		}
		name := strings.Join(fields[:len(fields)-1], " ")
		key := strings.ToLower(name)
		levels, ok := byName[key]
		if !ok {
			continue
		}
		n := min(seen[key], len(levels)-1)
		seen[key]++
		lines[i] = name + " " + FormatLevel(levels[n])
	}
	return strings.Join(lines, "\n")
}

// Levels indexes the valid levels of a roster by lowercased name. The first entry wins.
func Levels(attendees []Attendee) map[string]float64 {
	levels := make(map[string]float64, len(attendees))
	for _, a := range attendees {
		if !a.Valid() {
			continue
		}
		key := strings.ToLower(a.Name)
		if _, ok := levels[key]; !ok {
			levels[key] = a.Level
		}
	}
	return levels
}

// TrendOf compares a current level against its initial value.
func TrendOf(initial, current float64) Trend {
	switch {
	case math.IsNaN(initial) || math.IsNaN(current):
		return Unchanged
	case current < initial:
		return Improved
	case current > initial:
		return Declined
	default:
		return Unchanged
	}
}
