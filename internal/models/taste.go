package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TasteCategory is one of the sixteen fixed tasting-wheel categories.
type TasteCategory int

const (
	// Mouth feel
	Gritty TasteCategory = iota
	Smooth
	Body
	Clean

	// Aroma
	Fruity
	Floral
	Chocolate
	Nutty
	Caramel
	Roasted
	Cereal
	Green

	// Taste
	Sour
	Bitter
	Sweet
	Salty

	NumTasteCategories = 16
)

// MaxIntensity is the highest ring a category can be rated at.
const MaxIntensity = 3

var tasteCategoryNames = [NumTasteCategories]string{
	"Gritty", "Smooth", "Body", "Clean",
	"Fruity", "Floral", "Chocolate", "Nutty", "Caramel", "Roasted", "Cereal", "Green",
	"Sour", "Bitter", "Sweet", "Salty",
}

// TasteCategories returns every category in declared order.
func TasteCategories() []TasteCategory {
	out := make([]TasteCategory, NumTasteCategories)
	for i := range out {
		out[i] = TasteCategory(i)
	}
	return out
}

func (c TasteCategory) Valid() bool {
	return c >= 0 && c < NumTasteCategories
}

func (c TasteCategory) String() string {
	if !c.Valid() {
		return fmt.Sprintf("TasteCategory(%d)", int(c))
	}
	return tasteCategoryNames[c]
}

// ParseTasteCategory resolves a category name, ignoring case.
func ParseTasteCategory(name string) (TasteCategory, error) {
	for i, n := range tasteCategoryNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return TasteCategory(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown taste category %q", ErrInvalidEntry, name)
}

func (c TasteCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid taste category %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *TasteCategory) UnmarshalText(b []byte) error {
	parsed, err := ParseTasteCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TasteRating holds an intensity in {0,1,2,3} for each of the sixteen
// categories. The array shape makes a missing or extra key unrepresentable.
type TasteRating [NumTasteCategories]int

// Get returns the intensity recorded for c.
func (r *TasteRating) Get(c TasteCategory) int {
	if !c.Valid() {
		return 0
	}
	return r[c]
}

// Set records an intensity for c.
func (r *TasteRating) Set(c TasteCategory, intensity int) error {
	if !c.Valid() {
		return fmt.Errorf("%w: invalid taste category %d", ErrInvalidEntry, int(c))
	}
	if intensity < 0 || intensity > MaxIntensity {
		return fmt.Errorf("%w: intensity %d for %s outside [0, %d]", ErrInvalidEntry, intensity, c, MaxIntensity)
	}
	r[c] = intensity
	return nil
}

// Validate checks every intensity is within range.
func (r *TasteRating) Validate() error {
	for i, v := range r {
		if v < 0 || v > MaxIntensity {
			return fmt.Errorf("%w: intensity %d for %s outside [0, %d]", ErrInvalidEntry, v, TasteCategory(i), MaxIntensity)
		}
	}
	return nil
}

func (r TasteRating) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, NumTasteCategories)
	for i, v := range r {
		m[tasteCategoryNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON requires exactly the sixteen category names as keys.
func (r *TasteRating) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("taste rating: %w", err)
	}

	var out TasteRating
	var unknown []string
	for name, v := range m {
		idx := -1
		for i, n := range tasteCategoryNames {
			if n == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			unknown = append(unknown, name)
			continue
		}
		out[idx] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("taste rating: unknown categories %v", unknown)
	}

	var missing []string
	for _, n := range tasteCategoryNames {
		if _, ok := m[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("taste rating: missing categories %v", missing)
	}

	if err := out.Validate(); err != nil {
		return fmt.Errorf("taste rating: %w", err)
	}
	*r = out
	return nil
}
