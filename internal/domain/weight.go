package domain

import (
	"strconv"
	"strings"
)

// DefaultBodyWeight is used for assisted/bodyweight exercises when no
// profile value is available.
const DefaultBodyWeight = 90.0

type weightRule struct {
	Multiplier float64
	BaseWeight float64
}

// Type defaults: barbell input is plates per side (x2) plus a 20kg bar,
// plate-loaded machines assume a 50kg carriage.
var weightRules = map[WeightInputType]weightRule{
	InputBarbell:     {Multiplier: 2, BaseWeight: 20},
	InputPlateLoaded: {Multiplier: 2, BaseWeight: 50},
	InputDumbbell:    {Multiplier: 1, BaseWeight: 0},
	InputMachine:     {Multiplier: 1, BaseWeight: 0},
	InputStandard:    {Multiplier: 1, BaseWeight: 0},
}

// ParseWeight parses a user-entered numeric string. Comma decimal separators
// are accepted ("22,5"). Returns false for empty, non-numeric or negative
// input.
func ParseWeight(raw string) (float64, bool) {
	clean := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if clean == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// FormatWeight renders an effective or input weight back into an editable
// field value, without trailing zeros.
func FormatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (e *Exercise) rule() weightRule {
	r, ok := weightRules[e.InputType]
	if !ok {
		r = weightRule{Multiplier: 1}
	}
	if e.Multiplier != nil {
		r.Multiplier = *e.Multiplier
	}
	if e.BaseWeight != nil {
		r.BaseWeight = *e.BaseWeight
	}
	return r
}

func resolveBodyWeight(bodyWeight float64) float64 {
	if bodyWeight <= 0 {
		return DefaultBodyWeight
	}
	return bodyWeight
}

// EffectiveWeight converts raw user input into the normalized load used for
// history, deltas and 1RM display. Returns false when the input does not
// parse; callers treat that as "not ready to complete".
func (e *Exercise) EffectiveWeight(raw string, bodyWeight float64) (float64, bool) {
	input, ok := ParseWeight(raw)
	if !ok {
		return 0, false
	}
	switch e.InputType {
	case InputAssisted:
		eff := resolveBodyWeight(bodyWeight) - input
		if eff < 0 {
			eff = 0
		}
		return eff, true
	case InputBodyweight:
		return resolveBodyWeight(bodyWeight) + input, true
	default:
		r := e.rule()
		return input*r.Multiplier + r.BaseWeight, true
	}
}

// InputWeight is the inverse of EffectiveWeight, used to redisplay a
// historical effective load as an editable input value.
func (e *Exercise) InputWeight(effective, bodyWeight float64) float64 {
	switch e.InputType {
	case InputAssisted:
		input := resolveBodyWeight(bodyWeight) - effective
		if input < 0 {
			input = 0
		}
		return input
	case InputBodyweight:
		return effective - resolveBodyWeight(bodyWeight)
	default:
		r := e.rule()
		if r.Multiplier == 0 {
			return effective
		}
		return (effective - r.BaseWeight) / r.Multiplier
	}
}
