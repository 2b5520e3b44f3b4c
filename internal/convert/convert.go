// Package convert implements the unit converter: a registry of conversions
// grouped by category (distance, temperature, weight, volume).
package convert

import (
	"fmt"

	apperrors "taskninja/internal/errors"
)

// Conversion is a single named unit conversion.
type Conversion struct {
	Key   string
	Label string
	Apply func(float64) float64
}

// Category groups related conversions.
type Category struct {
	Key         string
	Label       string
	Conversions []Conversion
}

// Temperature conversions are offset-based; everything else is a factor.
func cToF(c float64) float64 { return c*9/5 + 32 }
func fToC(f float64) float64 { return (f - 32) * 5 / 9 }
func cToK(c float64) float64 { return c + 273.15 }
func kToC(k float64) float64 { return k - 273.15 }

func factor(f float64) func(float64) float64 {
	return func(v float64) float64 { return v * f }
}

func inverse(f float64) func(float64) float64 {
	return func(v float64) float64 { return v / f }
}

// Categories is the full conversion registry in menu order.
var Categories = []Category{
	{
		Key:   "distance",
		Label: "Distance",
		Conversions: []Conversion{
			{"km_to_miles", "Kilometers to Miles", factor(0.621371)},
			{"miles_to_km", "Miles to Kilometers", inverse(0.621371)},
			{"km_to_feet", "Kilometers to Feet", factor(3280.84)},
			{"feet_to_km", "Feet to Kilometers", inverse(3280.84)},
			{"m_to_feet", "Meters to Feet", factor(3.28084)},
			{"feet_to_m", "Feet to Meters", inverse(3.28084)},
		},
	},
	{
		Key:   "temperature",
		Label: "Temperature",
		Conversions: []Conversion{
			{"c_to_f", "Celsius to Fahrenheit", cToF},
			{"f_to_c", "Fahrenheit to Celsius", fToC},
			{"c_to_k", "Celsius to Kelvin", cToK},
			{"k_to_c", "Kelvin to Celsius", kToC},
			{"f_to_k", "Fahrenheit to Kelvin", func(f float64) float64 { return cToK(fToC(f)) }},
			{"k_to_f", "Kelvin to Fahrenheit", func(k float64) float64 { return cToF(kToC(k)) }},
		},
	},
	{
		Key:   "weight",
		Label: "Weight",
		Conversions: []Conversion{
			{"kg_to_lb", "Kilograms to Pounds", factor(2.20462)},
			{"lb_to_kg", "Pounds to Kilograms", inverse(2.20462)},
			{"kg_to_oz", "Kilograms to Ounces", factor(35.274)},
			{"oz_to_kg", "Ounces to Kilograms", inverse(35.274)},
			{"g_to_oz", "Grams to Ounces", factor(0.035274)},
			{"oz_to_g", "Ounces to Grams", inverse(0.035274)},
		},
	},
	{
		Key:   "volume",
		Label: "Volume",
		Conversions: []Conversion{
			{"l_to_gal", "Liters to Gallons", factor(0.264172)},
			{"gal_to_l", "Gallons to Liters", inverse(0.264172)},
			{"l_to_cups", "Liters to Cups", factor(4.22675)},
			{"cups_to_l", "Cups to Liters", inverse(4.22675)},
			{"ml_to_oz", "Milliliters to Fluid Ounces", factor(0.033814)},
			{"oz_to_ml", "Fluid Ounces to Milliliters", inverse(0.033814)},
		},
	},
}

// FindCategory returns the category with the given key.
func FindCategory(key string) (*Category, error) {
	for i := range Categories {
		if Categories[i].Key == key {
			return &Categories[i], nil
		}
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", key))
}

// Convert applies the named conversion from any category.
func Convert(key string, value float64) (float64, error) {
	for _, cat := range Categories {
		for _, c := range cat.Conversions {
			if c.Key == key {
				return c.Apply(value), nil
			}
		}
	}
	return 0, apperrors.InvalidInput(fmt.Sprintf("unknown conversion %q", key))
}
