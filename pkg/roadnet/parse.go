package roadnet

import (
	"regexp"
	"strconv"
	"strings"
)

// Turn is a signposted lane movement.
type Turn string

// Lane movements recognized in turn-lane markings.
const (
	TurnThrough      Turn = "through"
	TurnLeft         Turn = "left"
	TurnSlightLeft   Turn = "slight_left"
	TurnSharpLeft    Turn = "sharp_left"
	TurnRight        Turn = "right"
	TurnSlightRight  Turn = "slight_right"
	TurnSharpRight   Turn = "sharp_right"
	TurnReverse      Turn = "reverse"
	TurnMergeToLeft  Turn = "merge_to_left"
	TurnMergeToRight Turn = "merge_to_right"
)

var turnNames = map[string]Turn{
	"through":        TurnThrough,
	"left":           TurnLeft,
	"slight_left":    TurnSlightLeft,
	"sharp_left":     TurnSharpLeft,
	"right":          TurnRight,
	"slight_right":   TurnSlightRight,
	"sharp_right":    TurnSharpRight,
	"reverse":        TurnReverse,
	"merge_to_left":  TurnMergeToLeft,
	"merge_to_right": TurnMergeToRight,
}

// ParseTurnLanes parses a turn-lane marking such as "left|through;right" into
// the distinct set of lane movements it permits, preserving first-seen order.
// Lanes are separated by '|' and a lane may carry several movements separated
// by ';'. Unrecognized movement names are skipped; an empty or fully
// unrecognized marking yields nil.
func ParseTurnLanes(marking string) []Turn {
	var turns []Turn
	seen := make(map[Turn]bool)
	for _, lane := range strings.Split(marking, "|") {
		for _, dir := range strings.Split(lane, ";") {
			name := strings.ToLower(strings.TrimSpace(dir))
			t, ok := turnNames[name]
			if !ok || seen[t] {
				continue
			}
			seen[t] = true
			turns = append(turns, t)
		}
	}
	return turns
}

var speedNumRe = regexp.MustCompile(`\d+`)

// ParseSpeed parses a speed-limit tag into km/h. Values carrying an "mph"
// unit are converted. Non-numeric values such as "none", "unlimited" or
// "signals" report no limit; ok is false when no numeric limit was found.
func ParseSpeed(tag string) (kmh float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(tag))
	switch s {
	case "", "none", "unlimited", "signals":
		return 0, false
	}
	match := speedNumRe.FindString(s)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	if strings.Contains(s, "mph") {
		v *= 1.60934
	}
	return v, true
}

var (
	feetInchesRe = regexp.MustCompile(`^(\d+)\s*'\s*(\d+)`)
	numUnitRe    = regexp.MustCompile(`^([\d.]+)\s*([a-z]+)`)
)

// ParseWidthMeters parses a width tag into meters. Accepted forms include
// "12m", "40 ft", "16'3\"", "5 mi", "2km" and bare numbers (assumed meters).
// ok is false for unparseable input.
func ParseWidthMeters(tag string) (meters float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(tag))

	if m := feetInchesRe.FindStringSubmatch(s); m != nil {
		ft, _ := strconv.ParseFloat(m[1], 64)
		inch, _ := strconv.ParseFloat(m[2], 64)
		return ft*0.3048 + inch*0.0254, true
	}

	if m := numUnitRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		switch m[2] {
		case "m", "meter", "meters":
			return v, true
		case "km", "kilometer", "kilometre":
			return v * 1000.0, true
		case "mi", "mile", "miles":
			return v * 1609.344, true
		case "ft", "feet":
			return v * 0.3048, true
		case "in", "inch", "inches":
			return v * 0.0254, true
		}
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
