// Package sensor reads lab and storage measurements from an external feed.
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

const (
	// DefaultTimeout bounds one feed request when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	maxBodySize = 64 << 10
	userAgent   = "EatSafe-Sensor"
)

// Payload is the JSON document served by the feed. Absent fields are filled
// from the fallback source.
type Payload struct {
	PH            *float64 `json:"ph"`
	MoisturePct   *float64 `json:"moisturePct"`
	BacteriaCount *int     `json:"bacteriaCount"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
}

// HTTPSource implements safety.ReadingSource on top of an HTTP JSON feed.
// When the feed is unreachable or omits a field, the fallback supplies it.
type HTTPSource struct {
	url      string
	client   *http.Client
	fallback safety.ReadingSource
	log      logger.Logger
}

var _ safety.CombinedSource = (*HTTPSource)(nil)

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *HTTPSource) { s.client = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *HTTPSource) { s.log = l }
}

// NewHTTPSource returns a source polling url. A nil fallback uses a randomly
// seeded safety.RandomSource.
func NewHTTPSource(url string, timeout time.Duration, fallback safety.ReadingSource, opts ...Option) (*HTTPSource, error) {
	if url == "" {
		return nil, errors.Newf("sensor URL is empty").
			Component("sensor").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if fallback == nil {
		fallback = safety.NewRandomSource(nil)
	}

	s := &HTTPSource{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		fallback: fallback,
		log:      logger.Global().Module("sensor"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Valid pH scale.
const (
	minPH = 0.0
	maxPH = 14.0
)

// Reading returns the lab reading and storage conditions from a single
// feed request.
func (s *HTTPSource) Reading(ctx context.Context) (safety.LabReading, safety.Conditions, error) {
	p := s.fetchOrEmpty(ctx)
	lab, err := s.labReading(ctx, p)
	if err != nil {
		return safety.LabReading{}, safety.Conditions{}, err
	}
	env, err := s.conditions(ctx, p)
	if err != nil {
		return safety.LabReading{}, safety.Conditions{}, err
	}
	return lab, env, nil
}

// LabReading returns pH, moisture and bacteria count.
func (s *HTTPSource) LabReading(ctx context.Context) (safety.LabReading, error) {
	return s.labReading(ctx, s.fetchOrEmpty(ctx))
}

// Conditions returns storage temperature and humidity.
func (s *HTTPSource) Conditions(ctx context.Context) (safety.Conditions, error) {
	return s.conditions(ctx, s.fetchOrEmpty(ctx))
}

func (s *HTTPSource) labReading(ctx context.Context, p Payload) (safety.LabReading, error) {
	return safety.CompleteLabReading(ctx, s.fallback, safety.PartialLabReading{
		PH:            p.PH,
		MoisturePct:   p.MoisturePct,
		BacteriaCount: p.BacteriaCount,
	})
}

func (s *HTTPSource) conditions(ctx context.Context, p Payload) (safety.Conditions, error) {
	if p.Temperature != nil && p.Humidity != nil {
		return safety.Conditions{Temperature: *p.Temperature, Humidity: *p.Humidity}, nil
	}

	out, err := s.fallback.Conditions(ctx)
	if err != nil {
		return safety.Conditions{}, err
	}
	if p.Temperature != nil {
		out.Temperature = *p.Temperature
	}
	if p.Humidity != nil {
		out.Humidity = *p.Humidity
	}
	return out, nil
}

// fetchOrEmpty returns an empty payload when the feed fails so every field
// falls back. Out of range values are dropped the same way.
func (s *HTTPSource) fetchOrEmpty(ctx context.Context) Payload {
	p, err := s.Fetch(ctx)
	if err != nil {
		s.log.Warn("sensor feed unavailable, using fallback readings",
			logger.String("url", s.url),
			logger.Error(err))
		return Payload{}
	}
	return s.sanitize(p)
}

// sanitize clears fields a lab could not have measured.
func (s *HTTPSource) sanitize(p Payload) Payload {
	if p.PH != nil && (math.IsNaN(*p.PH) || *p.PH < minPH || *p.PH > maxPH) {
		s.rejected("ph", *p.PH)
		p.PH = nil
	}
	if p.MoisturePct != nil && (math.IsNaN(*p.MoisturePct) || *p.MoisturePct < 0) {
		s.rejected("moisturePct", *p.MoisturePct)
		p.MoisturePct = nil
	}
	if p.BacteriaCount != nil && *p.BacteriaCount < 0 {
		s.rejected("bacteriaCount", float64(*p.BacteriaCount))
		p.BacteriaCount = nil
	}
	return p
}

func (s *HTTPSource) rejected(field string, value float64) {
	s.log.Warn("sensor feed value out of range, using fallback",
		logger.String("url", s.url),
		logger.String("field", field),
		logger.Float64("value", value))
}

// Fetch performs one request against the feed.
func (s *HTTPSource) Fetch(ctx context.Context) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return Payload{}, s.networkError(err, "create_request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return Payload{}, s.networkError(err, "request")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.Debug("failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, errors.Newf("sensor feed returned status %d", resp.StatusCode).
			Component("sensor").
			Category(errors.CategoryNetwork).
			Context("url", s.url).
			Context("status_code", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Payload{}, s.networkError(err, "read_body")
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, errors.New(fmt.Errorf("failed to decode sensor payload: %w", err)).
			Component("sensor").
			Category(errors.CategoryValidation).
			Context("url", s.url).
			Build()
	}
	return p, nil
}

func (s *HTTPSource) networkError(err error, op string) error {
	return errors.New(err).
		Component("sensor").
		Category(errors.CategoryNetwork).
		Context("operation", op).
		Context("url", s.url).
		Build()
}
