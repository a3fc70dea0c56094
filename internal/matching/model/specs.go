package model

import (
	"encoding/json"
	"fmt"
)

type SpecKind string

const (
	SpecText    SpecKind = "text"
	SpecNumber  SpecKind = "number"
	SpecMeasure SpecKind = "measure"
	SpecFlag    SpecKind = "flag"
)

// Measurement - пара "число + единица", например 50mm → {50, "mm"}.
type Measurement struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// SpecValue - значение характеристики. Заполнено ровно одно поле, соответствующее Kind.
type SpecValue struct {
	Kind    SpecKind     `json:"kind" yaml:"kind"`
	Text    string       `json:"text,omitempty" yaml:"text,omitempty"`
	Number  *float64     `json:"number,omitempty" yaml:"number,omitempty"`
	Measure *Measurement `json:"measure,omitempty" yaml:"measure,omitempty"`
	Flag    *bool        `json:"flag,omitempty" yaml:"flag,omitempty"`
}

type Specifications map[string]SpecValue

func TextSpec(s string) SpecValue { return SpecValue{Kind: SpecText, Text: s} }

func NumberSpec(v float64) SpecValue { return SpecValue{Kind: SpecNumber, Number: &v} }

func MeasureSpec(v float64, unit string) SpecValue {
	return SpecValue{Kind: SpecMeasure, Measure: &Measurement{Value: v, Unit: unit}}
}

func FlagSpec(b bool) SpecValue { return SpecValue{Kind: SpecFlag, Flag: &b} }

func (v SpecValue) Validate() error {
	switch v.Kind {
	case SpecText:
		if v.Number != nil || v.Measure != nil || v.Flag != nil {
			return fmt.Errorf("spec kind %q carries foreign fields", v.Kind)
		}
	case SpecNumber:
		if v.Number == nil {
			return fmt.Errorf("spec kind %q without number", v.Kind)
		}
	case SpecMeasure:
		if v.Measure == nil {
			return fmt.Errorf("spec kind %q without measure", v.Kind)
		}
	case SpecFlag:
		if v.Flag == nil {
			return fmt.Errorf("spec kind %q without flag", v.Kind)
		}
	default:
		return fmt.Errorf("unknown spec kind %q", v.Kind)
	}
	return nil
}

func (s Specifications) Validate() error {
	for k, v := range s {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("specification %q: %w", k, err)
		}
	}
	return nil
}

func (v *SpecValue) UnmarshalJSON(b []byte) error {
	type plain SpecValue
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	sv := SpecValue(p)
	if err := sv.Validate(); err != nil {
		return err
	}
	*v = sv
	return nil
}
