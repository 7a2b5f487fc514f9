// Package display formats brew log values for terminal output.
package display

import (
	"fmt"
	"strings"

	"brewlog/internal/models"
)

const na = "N/A"

// Temp renders a water temperature. Values above 100 are assumed to be
// Fahrenheit since water does not brew above boiling in Celsius.
func Temp(temp float64) string {
	if temp == 0 {
		return na
	}
	unit := 'C'
	if temp > 100 {
		unit = 'F'
	}
	return fmt.Sprintf("%.1f°%c", temp, unit)
}

func BrewTime(seconds int) string {
	if seconds == 0 {
		return na
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes, remaining := seconds/60, seconds%60
	if remaining == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, remaining)
}

func Rating(rating float64) string {
	if rating == 0 {
		return na
	}
	return fmt.Sprintf("%.1f/%.0f", rating, models.MaxRating)
}

// Ratio renders the 1:X brew ratio
func Ratio(ratio float64) string {
	if ratio <= 0 {
		return na
	}
	return fmt.Sprintf("1:%.1f", ratio)
}

func Grams(g float64) string {
	if g == 0 {
		return na
	}
	return fmt.Sprintf("%.1fg", g)
}

func Millilitres(ml float64) string {
	if ml == 0 {
		return na
	}
	return fmt.Sprintf("%.0fml", ml)
}

func Date(d models.Date) string {
	if d.IsZero() {
		return na
	}
	return d.Format("2006-01-02")
}

// Tastes lists the non-zero intensities as "Fruity 3, Sour 1", in wheel order.
func Tastes(r models.TasteRating) string {
	var parts []string
	for _, c := range models.TasteCategories() {
		if v := r.Get(c); v > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", c, v))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Summary is a multi-line human readable description of an entry.
func Summary(e models.BrewLogEntry) string {
	var b strings.Builder
	name := e.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "%s  #%d\n", name, e.ID)
	fmt.Fprintf(&b, "  Date:    %s\n", Date(e.Date))
	fmt.Fprintf(&b, "  Method:  %s\n", e.BrewMethod)
	fmt.Fprintf(&b, "  Rating:  %s\n", Rating(e.Rating))

	bean := e.CoffeeBeanDetail
	switch {
	case bean.CoffeeName != "" && bean.Origin != "":
		fmt.Fprintf(&b, "  Coffee:  %s (%s)\n", bean.CoffeeName, bean.Origin)
	case bean.CoffeeName != "" || bean.Origin != "":
		fmt.Fprintf(&b, "  Coffee:  %s%s\n", bean.CoffeeName, bean.Origin)
	}
	bd := e.BrewDetail
	fmt.Fprintf(&b, "  Dose:    %s  Water: %s  Ratio: %s\n", Grams(bd.BeanWeight), Millilitres(bd.WaterAmount), Ratio(bd.Ratio))
	fmt.Fprintf(&b, "  Time:    %s  Temp: %s\n", BrewTime(bd.BrewTime), Temp(bd.Temperature))
	fmt.Fprintf(&b, "  Taste:   %s\n", Tastes(e.TasteRating))
	fmt.Fprintf(&b, "  Photo:   %s\n", e.Image)
	return b.String()
}
