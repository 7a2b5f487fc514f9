// Package tastewheel maps taste categories to positions on a radial chart and
// maps taps on that chart back to a category and intensity ring.
//
// Angles are in radians, measured like atan2(dy, dx) from the chart centre,
// and normalized into [0, 2π). Everything here is pure and safe for
// concurrent use.
package tastewheel

import (
	"fmt"
	"math"

	"brewlog/internal/models"
)

const (
	fullTurn = 2 * math.Pi

	// Rings is the number of concentric intensity rings.
	Rings = models.MaxIntensity
)

// Group is a named set of categories sharing one angular span.
type Group struct {
	Name       string
	Start      float64
	Span       float64
	Categories []models.TasteCategory
}

// End is the exclusive upper bound of the group's span.
func (g Group) End() float64 {
	return g.Start + g.Span
}

// SliceWidth is the angular width given to each category in the group.
func (g Group) SliceWidth() float64 {
	return g.Span / float64(len(g.Categories))
}

var groups = []Group{
	{
		Name:       "Mouth Feel",
		Start:      0,
		Span:       math.Pi / 2,
		Categories: []models.TasteCategory{models.Gritty, models.Smooth, models.Body, models.Clean},
	},
	{
		Name:  "Aroma",
		Start: math.Pi / 2,
		Span:  math.Pi,
		Categories: []models.TasteCategory{
			models.Fruity, models.Floral, models.Chocolate, models.Nutty,
			models.Caramel, models.Roasted, models.Cereal, models.Green,
		},
	},
	{
		Name:       "Taste",
		Start:      3 * math.Pi / 2,
		Span:       math.Pi / 2,
		Categories: []models.TasteCategory{models.Sour, models.Bitter, models.Sweet, models.Salty},
	},
}

// Groups returns the fixed taxonomy in angular order.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		g.Categories = append([]models.TasteCategory(nil), g.Categories...)
		out[i] = g
	}
	return out
}

// GroupOf returns the group containing c and c's index within it.
func GroupOf(c models.TasteCategory) (Group, int, error) {
	for _, g := range groups {
		for i, gc := range g.Categories {
			if gc == c {
				return g, i, nil
			}
		}
	}
	return Group{}, 0, fmt.Errorf("no wheel group for %v", c)
}

// Segment is the angular slice owned by one category.
type Segment struct {
	Category models.TasteCategory `json:"category"`
	Start    float64              `json:"startAngle"`
	End      float64              `json:"endAngle"`
	// Mid bisects the slice and is where the label goes
	Mid float64 `json:"midAngle"`
}

// Contains reports whether angle (already normalized) falls in [Start, End).
func (s Segment) Contains(angle float64) bool {
	return angle >= s.Start && angle < s.End
}

// SegmentGeometry returns the slice of the wheel owned by c.
func SegmentGeometry(c models.TasteCategory) (Segment, error) {
	g, i, err := GroupOf(c)
	if err != nil {
		return Segment{}, err
	}
	return segmentAt(g, i), nil
}

func segmentAt(g Group, i int) Segment {
	n := float64(len(g.Categories))
	start := g.Start + g.Span*float64(i)/n
	end := g.Start + g.Span*float64(i+1)/n
	return Segment{Category: g.Categories[i], Start: start, End: end, Mid: (start + end) / 2}
}

// NormalizeAngle maps any angle into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, fullTurn)
	if a < 0 {
		a += fullTurn
	}
	// Mod of a tiny negative number can round up to exactly 2π
	if a >= fullTurn {
		a = 0
	}
	return a
}
