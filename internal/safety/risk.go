// Package safety holds the food-safety scoring rules: bacterial risk
// classification, lab result evaluation, the temperature/humidity CFU
// forecast and supplier reliability aggregation.
//
// Everything here is a pure function of its inputs and safe for concurrent
// use. Persistence and transport live elsewhere.
package safety

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// Risk thresholds in CFU. Every caller classifies through ClassifyRisk so the
// prediction, report and dashboard paths cannot disagree.
const (
	ModerateRiskThreshold = 500
	HighRiskThreshold     = 1000
)

// RiskLabel is the ordinal bacterial risk category. Labels compare with the
// usual operators: Safe < ModerateRisk < HighRisk. The zero value is not a
// valid label.
type RiskLabel int

const (
	Safe RiskLabel = iota + 1
	ModerateRisk
	HighRisk
)

var riskNames = map[RiskLabel]string{
	Safe:         "Safe",
	ModerateRisk: "Moderate Risk",
	HighRisk:     "High Risk",
}

// RiskLabels returns all labels in ascending order.
func RiskLabels() []RiskLabel {
	return []RiskLabel{Safe, ModerateRisk, HighRisk}
}

// ClassifyRisk maps a CFU count to its risk label. Negative counts are Safe.
func ClassifyRisk(cfu int) RiskLabel {
	switch {
	case cfu > HighRiskThreshold:
		return HighRisk
	case cfu > ModerateRiskThreshold:
		return ModerateRisk
	default:
		return Safe
	}
}

// Valid reports whether r is one of the defined labels.
func (r RiskLabel) Valid() bool {
	_, ok := riskNames[r]
	return ok
}

func (r RiskLabel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskLabel(%d)", int(r))
}

// ParseRiskLabel accepts the display form ("High Risk") as well as variants
// differing in case, spaces, underscores or dashes ("high_risk", "HighRisk").
func ParseRiskLabel(s string) (RiskLabel, error) {
	switch normalizeLabel(s) {
	case "safe":
		return Safe, nil
	case "moderaterisk", "moderate":
		return ModerateRisk, nil
	case "highrisk", "high":
		return HighRisk, nil
	}
	return 0, errors.Newf("unknown risk label %q", s).
		Component("safety").
		Category(errors.CategoryValidation).
		Build()
}

func (r RiskLabel) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk label %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *RiskLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseRiskLabel(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r RiskLabel) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (r *RiskLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("risk label must be a string: %w", err)
	}
	return r.UnmarshalText([]byte(s))
}

// Value stores the label as its display text.
func (r RiskLabel) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk label %d", int(r))
	}
	return r.String(), nil
}

// Scan reads a label stored as text.
func (r *RiskLabel) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into RiskLabel", src)
	}
}

// normalizeLabel lower-cases s and strips separators so that label matching
// is insensitive to the casing and spacing found in stored data.
func normalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
