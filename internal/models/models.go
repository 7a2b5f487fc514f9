package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidEntry is returned (wrapped) by Validate for any entry that breaks
// a field constraint.
var ErrInvalidEntry = errors.New("invalid brew log entry")

// MaxRating is the upper bound of an overall session rating.
const MaxRating = 5.0

// MaxEntryID is the largest millisecond id that still fits the 53 bits of
// microseconds an AT Protocol TID can carry.
const MaxEntryID int64 = (1<<53 - 1) / 1000

type BrewMethod string

const (
	MethodPourOver    BrewMethod = "Pour Over"
	MethodColdBrew    BrewMethod = "Cold Brew"
	MethodBrewBar     BrewMethod = "Brew Bar"
	MethodFrenchPress BrewMethod = "French Press"
)

// BrewMethods lists every supported brew method in display order.
var BrewMethods = []BrewMethod{MethodPourOver, MethodColdBrew, MethodBrewBar, MethodFrenchPress}

// Valid reports whether m is one of the supported brew methods.
func (m BrewMethod) Valid() bool {
	for _, known := range BrewMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParseBrewMethod matches s against the known methods, ignoring case and
// surrounding whitespace.
func ParseBrewMethod(s string) (BrewMethod, error) {
	s = strings.TrimSpace(s)
	for _, m := range BrewMethods {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown brew method %q", ErrInvalidEntry, s)
}

type CoffeeBeanDetail struct {
	CoffeeName string  `json:"coffeeName"`
	Origin     string  `json:"origin"`
	RoastDate  Date    `json:"roastDate"`
	RoastLevel string  `json:"roastLevel"`
	BagWeight  float64 `json:"bagWeight"` // grams
}

type BrewDetail struct {
	GrindSize   string  `json:"grindSize"`
	BeanWeight  float64 `json:"beanWeight"`  // grams
	WaterAmount float64 `json:"waterAmount"` // ml
	// Ratio is the X in 1:X (ml of water per gram of coffee)
	Ratio       float64 `json:"ratio"`
	BrewTime    int     `json:"brewTime"`    // seconds
	Temperature float64 `json:"temperature"` // celsius
}

// BrewLogEntry is one recorded brewing session.
type BrewLogEntry struct {
	ID               int64            `json:"id"`
	Date             Date             `json:"date"`
	Name             string           `json:"name"`
	BrewMethod       BrewMethod       `json:"brewMethod"`
	Image            string           `json:"image"`
	CoffeeBeanDetail CoffeeBeanDetail `json:"coffeeBeanDetail"`
	BrewDetail       BrewDetail       `json:"brewDetail"`
	TasteRating      TasteRating      `json:"tasteRating"`
	Rating           float64          `json:"rating"`
}

// IsRemoteImage reports whether the image points at a remote URL rather than
// a local file.
func IsRemoteImage(image string) bool {
	return strings.HasPrefix(image, "http")
}

// Validate checks the field constraints of an entry.
func (e *BrewLogEntry) Validate() error {
	if !e.BrewMethod.Valid() {
		return fmt.Errorf("%w: unknown brew method %q", ErrInvalidEntry, e.BrewMethod)
	}
	if e.Rating < 0 || e.Rating > MaxRating {
		return fmt.Errorf("%w: rating %.2f outside [0, %.0f]", ErrInvalidEntry, e.Rating, MaxRating)
	}
	if e.Image == "" {
		return fmt.Errorf("%w: image is empty", ErrInvalidEntry)
	}
	if err := e.TasteRating.Validate(); err != nil {
		return err
	}

	bd := e.BrewDetail
	if bd.BeanWeight < 0 || bd.WaterAmount < 0 || bd.Ratio < 0 || bd.BrewTime < 0 {
		return fmt.Errorf("%w: brew detail values must not be negative", ErrInvalidEntry)
	}
	if e.CoffeeBeanDetail.BagWeight < 0 {
		return fmt.Errorf("%w: bag weight must not be negative", ErrInvalidEntry)
	}
	return nil
}

// ComputedRatio derives the 1:X ratio from the bean weight and water amount.
// Returns 0 when no beans were recorded.
func (d BrewDetail) ComputedRatio() float64 {
	if d.BeanWeight <= 0 {
		return 0
	}
	return d.WaterAmount / d.BeanWeight
}

// Date is a calendar date carried as an ISO-8601 string on the wire.
type Date struct {
	time.Time
}

const dateOnlyLayout = "2006-01-02"

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// SameDay compares two dates by calendar value, each read in its own offset.
func (d Date) SameDay(other Date) bool {
	if d.IsZero() || other.IsZero() {
		return d.IsZero() && other.IsZero()
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := other.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(time.RFC3339Nano) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a string, got %s", s)
	}
	s = s[1 : len(s)-1]

	// The offset is kept so the calendar day stays the one the user entered.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
