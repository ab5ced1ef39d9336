package safety

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
)

// Synthesized reading ranges.
const (
	MinPH           = 5.5
	MaxPH           = 7.5
	MinMoisture     = 2.0
	MaxMoisture     = 12.0
	MinBacteria     = 100
	MaxBacteria     = 900
	MinTemperatureC = 0.0
	MaxTemperatureC = 20.0
	MinHumidityPct  = 40.0
	MaxHumidityPct  = 95.0
)

// LabReading is a complete set of lab measurements for one batch.
type LabReading struct {
	PH            float64
	MoisturePct   float64
	BacteriaCount int
}

// PartialLabReading carries whatever the caller supplied; nil fields are
// filled from a ReadingSource.
type PartialLabReading struct {
	PH            *float64
	MoisturePct   *float64
	BacteriaCount *int
}

// Complete reports whether every field is set.
func (p PartialLabReading) Complete() bool {
	return p.PH != nil && p.MoisturePct != nil && p.BacteriaCount != nil
}

// Conditions are the storage temperature (°C) and relative humidity (%).
type Conditions struct {
	Temperature float64
	Humidity    float64
}

// ReadingSource supplies measurements that were not entered manually.
type ReadingSource interface {
	LabReading(ctx context.Context) (LabReading, error)
	Conditions(ctx context.Context) (Conditions, error)
}

// CombinedSource is a ReadingSource that can take a lab reading and the
// storage conditions from a single measurement.
type CombinedSource interface {
	ReadingSource
	Reading(ctx context.Context) (LabReading, Conditions, error)
}

// ReadAll returns a lab reading and storage conditions from src, in one call
// when src is a CombinedSource.
func ReadAll(ctx context.Context, src ReadingSource) (LabReading, Conditions, error) {
	if c, ok := src.(CombinedSource); ok {
		return c.Reading(ctx)
	}
	lab, err := src.LabReading(ctx)
	if err != nil {
		return LabReading{}, Conditions{}, err
	}
	env, err := src.Conditions(ctx)
	if err != nil {
		return LabReading{}, Conditions{}, err
	}
	return lab, env, nil
}

// CompleteLabReading fills the missing fields of partial from src. The source
// is not consulted when nothing is missing.
func CompleteLabReading(ctx context.Context, src ReadingSource, partial PartialLabReading) (LabReading, error) {
	var out LabReading
	if !partial.Complete() {
		generated, err := src.LabReading(ctx)
		if err != nil {
			return LabReading{}, err
		}
		out = generated
	}
	if partial.PH != nil {
		out.PH = *partial.PH
	}
	if partial.MoisturePct != nil {
		out.MoisturePct = *partial.MoisturePct
	}
	if partial.BacteriaCount != nil {
		out.BacteriaCount = *partial.BacteriaCount
	}
	return out, nil
}

// RandomSource draws uniform readings from the documented ranges.
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a RandomSource using rng. A nil rng gets a
// randomly seeded generator.
func NewRandomSource(rng *rand.Rand) *RandomSource {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomSource{rng: rng}
}

// NewSeededRandomSource returns a deterministic RandomSource.
func NewSeededRandomSource(seed uint64) *RandomSource {
	return NewRandomSource(rand.New(rand.NewPCG(seed, seed)))
}

func (s *RandomSource) LabReading(_ context.Context) (LabReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LabReading{
		PH:            roundTo(s.uniform(MinPH, MaxPH), 2),
		MoisturePct:   roundTo(s.uniform(MinMoisture, MaxMoisture), 2),
		BacteriaCount: int(math.Round(s.uniform(MinBacteria, MaxBacteria))),
	}, nil
}

func (s *RandomSource) Conditions(_ context.Context) (Conditions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Conditions{
		Temperature: roundTo(s.uniform(MinTemperatureC, MaxTemperatureC), 1),
		Humidity:    roundTo(s.uniform(MinHumidityPct, MaxHumidityPct), 1),
	}, nil
}

// uniform returns a value in [lo, hi]; caller holds s.mu.
func (s *RandomSource) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// FixedSource always returns the same readings.
type FixedSource struct {
	Lab LabReading
	Env Conditions
}

func (f FixedSource) LabReading(_ context.Context) (LabReading, error) {
	return f.Lab, nil
}

func (f FixedSource) Conditions(_ context.Context) (Conditions, error) {
	return f.Env, nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
