// ABOUTME: Body-mass metric computed from free-text weight and height input.
// ABOUTME: Input is rejected before any arithmetic when it is blank or not a positive number.
package routine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when weight, height, or gender cannot be used.
var ErrInvalidInput = errors.New("invalid input")

// Gender selects the metric correction factor.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts English and Spanish spellings and single letters.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "hombre", "h", "masculino":
		return Male, nil
	case "female", "f", "mujer", "femenino":
		return Female, nil
	}
	return "", fmt.Errorf("%w: gender %q", ErrInvalidInput, s)
}

// Factor is the multiplier applied to the raw ratio.
func (g Gender) Factor() float64 {
	if g == Female {
		return 0.95
	}
	return 1.0
}

// ComputeMetric returns weightKg / heightM² scaled by the gender factor.
// Height is in meters. Decimal commas are accepted.
func ComputeMetric(weightText, heightText string, gender Gender) (float64, error) {
	weight, err := parsePositive("weight", weightText)
	if err != nil {
		return 0, err
	}
	height, err := parsePositive("height", heightText)
	if err != nil {
		return 0, err
	}
	if gender != Male && gender != Female {
		return 0, fmt.Errorf("%w: gender %q", ErrInvalidInput, gender)
	}
	return weight / (height * height) * gender.Factor(), nil
}

func parsePositive(field, text string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("%w: %s is blank", ErrInvalidInput, field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidInput, field, text)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidInput, field)
	}
	return v, nil
}
