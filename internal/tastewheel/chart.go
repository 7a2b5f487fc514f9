package tastewheel

import (
	"fmt"
	"math"

	"brewlog/internal/models"
)

// Wheel is a taste chart of a given outer radius.
type Wheel struct {
	Radius float64
}

func New(radius float64) (Wheel, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Wheel{}, fmt.Errorf("wheel radius must be positive, got %v", radius)
	}
	return Wheel{Radius: radius}, nil
}

// Band is one intensity ring. Level 1 is innermost.
type Band struct {
	Level  int     `json:"level"`
	Inner  float64 `json:"inner"`
	Outer  float64 `json:"outer"`
	Filled bool    `json:"filled"`
}

// RingBands returns the three rings: [0, R/3], [R/3, 2R/3], [2R/3, R].
func (w Wheel) RingBands() [Rings]Band {
	var bands [Rings]Band
	for i := range bands {
		bands[i] = Band{
			Level: i + 1,
			Inner: w.Radius * float64(i) / Rings,
			Outer: w.Radius * float64(i+1) / Rings,
		}
	}
	return bands
}

// SegmentLayout is everything needed to draw one category's slice.
type SegmentLayout struct {
	Segment
	Group string      `json:"group"`
	Label Point       `json:"label"`
	Bands [Rings]Band `json:"bands"`
	Value int         `json:"value"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout returns every segment in angular order. A ring is filled when the
// rated intensity for its category is at least the ring's level.
func (w Wheel) Layout(rating models.TasteRating) []SegmentLayout {
	out := make([]SegmentLayout, 0, models.NumTasteCategories)
	for _, g := range groups {
		for i := range g.Categories {
			seg := segmentAt(g, i)
			value := rating.Get(seg.Category)
			bands := w.RingBands()
			for b := range bands {
				bands[b].Filled = value >= bands[b].Level
			}
			out = append(out, SegmentLayout{
				Segment: seg,
				Group:   g.Name,
				Label:   w.pointAt(seg.Mid, labelFactor),
				Bands:   bands,
				Value:   value,
			})
		}
	}
	return out
}

// labelFactor places labels just outside the outer ring
const labelFactor = 1.12

// LabelPosition returns the offset from the centre at which to draw c's label,
// factor times the radius out along the segment's bisector.
func (w Wheel) LabelPosition(c models.TasteCategory, factor float64) (Point, error) {
	seg, err := SegmentGeometry(c)
	if err != nil {
		return Point{}, err
	}
	return w.pointAt(seg.Mid, factor), nil
}

func (w Wheel) pointAt(angle, factor float64) Point {
	r := w.Radius * factor
	return Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// Hit is the result of a tap on the wheel.
type Hit struct {
	Category models.TasteCategory `json:"category"`
	Ring     int                  `json:"ring"`
	Distance float64              `json:"distance"`
	Angle    float64              `json:"angle"`
}

// Apply records the hit on rating by setting the category's intensity to the
// ring. Whether a repeated tap should clear instead is left to the caller.
func (h Hit) Apply(rating *models.TasteRating) error {
	return rating.Set(h.Category, h.Ring)
}

// HitTest classifies a tap at offset (dx, dy) from the centre. It returns
// false for taps outside the outer radius.
func (w Wheel) HitTest(dx, dy float64) (Hit, bool) {
	if w.Radius <= 0 || math.IsNaN(dx) || math.IsNaN(dy) {
		return Hit{}, false
	}
	distance := math.Hypot(dx, dy)

	var ring int
	switch {
	case distance <= w.Radius/3:
		ring = 1
	case distance <= 2*w.Radius/3:
		ring = 2
	case distance <= w.Radius:
		ring = 3
	default:
		return Hit{}, false
	}

	angle := NormalizeAngle(math.Atan2(dy, dx))
	for _, g := range groups {
		if angle < g.Start || angle >= g.End() {
			continue
		}
		i := int((angle - g.Start) / g.SliceWidth())
		if i >= len(g.Categories) {
			i = len(g.Categories) - 1
		}
		// Float division can land one slice off right at a boundary
		if seg := segmentAt(g, i); angle < seg.Start && i > 0 {
			i--
		} else if angle >= seg.End && i < len(g.Categories)-1 {
			i++
		}
		return Hit{Category: g.Categories[i], Ring: ring, Distance: distance, Angle: angle}, true
	}
	return Hit{}, false
}
