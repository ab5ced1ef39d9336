package safety

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
)

// Lab result limits. A batch fails on either limit alone. The bacteria limit
// is deliberately stricter than HighRiskThreshold, so a failed batch can still
// be classified Safe or ModerateRisk.
const (
	MaxMoisturePct   = 10.0
	MaxBacteriaCount = 500
)

// Forecast model constants.
const (
	baseCFU          = 80.0
	minCFU           = 50.0
	warmTempC        = 4.0
	warmSlope        = 100.0
	hotTempC         = 10.0
	hotSlope         = 200.0
	humidHumidityPct = 80.0
	humiditySlope    = 15.0

	// Forecasts at or above 2^63 saturate at math.MaxInt.
	maxCFU = 1 << 63
)

// Verdict is the outcome of a lab quality test. The zero value is not valid.
type Verdict int

const (
	Pass Verdict = iota + 1
	Fail
)

func (v Verdict) Valid() bool {
	return v == Pass || v == Fail
}

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "Pass"
	case Fail:
		return "Fail"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// ParseVerdict is case-insensitive and also accepts the "Passed"/"Failed"
// spellings present in older rows.
func ParseVerdict(s string) (Verdict, error) {
	switch normalizeLabel(s) {
	case "pass", "passed":
		return Pass, nil
	case "fail", "failed":
		return Fail, nil
	}
	return 0, errors.Newf("unknown test result %q", s).
		Component("safety").
		Category(errors.CategoryValidation).
		Build()
}

func (v Verdict) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	parsed, err := ParseVerdict(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	text, err := v.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("test result must be a string: %w", err)
	}
	return v.UnmarshalText([]byte(s))
}

func (v Verdict) Value() (driver.Value, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("invalid verdict %d", int(v))
	}
	return v.String(), nil
}

func (v *Verdict) Scan(src any) error {
	switch s := src.(type) {
	case string:
		return v.UnmarshalText([]byte(s))
	case []byte:
		return v.UnmarshalText(s)
	default:
		return fmt.Errorf("cannot scan %T into Verdict", src)
	}
}

// EvaluateLabResult fails a batch when moisture exceeds MaxMoisturePct or the
// bacteria count exceeds MaxBacteriaCount.
func EvaluateLabResult(moisturePct float64, bacteriaCount int) Verdict {
	if moisturePct > MaxMoisturePct || bacteriaCount > MaxBacteriaCount {
		return Fail
	}
	return Pass
}

// Forecast is the predicted bacterial load for a storage condition.
type Forecast struct {
	CFU  int
	Risk RiskLabel
}

// Predict estimates CFU from temperature (°C) and relative humidity (%).
//
// The hot-band term is added on top of the warm-band term, so above 10 °C
// each degree counts at both slopes.
func Predict(temperature, humidity float64) Forecast {
	cfu := baseCFU
	if temperature > warmTempC {
		cfu += (temperature - warmTempC) * warmSlope
	}
	if temperature > hotTempC {
		cfu += (temperature - hotTempC) * hotSlope
	}
	if humidity > humidHumidityPct {
		cfu += (humidity - humidHumidityPct) * humiditySlope
	}
	if cfu < minCFU {
		cfu = minCFU
	}
	if cfu >= maxCFU {
		return Forecast{CFU: math.MaxInt, Risk: ClassifyRisk(math.MaxInt)}
	}

	rounded := int(math.Round(cfu))
	return Forecast{CFU: rounded, Risk: ClassifyRisk(rounded)}
}

// ValidateConditions rejects temperatures and humidities that are not
// finite numbers.
func ValidateConditions(temperature, humidity float64) error {
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return errors.ValidationError("temperature must be a finite number")
	}
	if math.IsNaN(humidity) || math.IsInf(humidity, 0) {
		return errors.ValidationError("humidity must be a finite number")
	}
	return nil
}
