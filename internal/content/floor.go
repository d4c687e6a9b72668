package content

import (
	"fmt"
	"math"
	"strings"
)

// ScoreFloor maps the raw content credibility onto the final component score
type ScoreFloor string

const (
	// FloorNone uses 100 - mean(signals) as is
	FloorNone ScoreFloor = "none"

	// FloorNeutral maps raw r to (r+100)/2, so the component never drops below 50
	FloorNeutral ScoreFloor = "neutral"
)

// ParseScoreFloor validates a configured policy name; empty means FloorNone
func ParseScoreFloor(s string) (ScoreFloor, error) {
	switch ScoreFloor(strings.ToLower(strings.TrimSpace(s))) {
	case "", FloorNone:
		return FloorNone, nil
	case FloorNeutral:
		return FloorNeutral, nil
	default:
		return "", fmt.Errorf("unknown score floor %q (supported: none, neutral)", s)
	}
}

// Score converts signals into the content component score
func Score(signals [5]int, floor ScoreFloor) int {
	sum := 0
	for _, v := range signals {
		sum += clamp(v)
	}
	raw := 100 - float64(sum)/float64(len(signals))

	if floor == FloorNeutral {
		raw = (raw + 100) / 2
	}

	return clamp(int(math.Round(raw)))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
