// Package alerts publishes contamination alerts to MQTT and shoutrrr
// services.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// Kind identifies what produced an alert.
type Kind string

const (
	KindQualityTest Kind = "quality_test"
	KindPrediction  Kind = "prediction"
)

// Alert describes a stored measurement that crossed the alert threshold.
type Alert struct {
	Kind      Kind             `json:"kind"`
	BatchID   *uint            `json:"batchId,omitempty"`
	CFU       int              `json:"cfu"`
	Risk      safety.RiskLabel `json:"risk"`
	Result    *safety.Verdict  `json:"result,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Failed reports whether the alert carries a failing lab verdict.
func (a Alert) Failed() bool {
	return a.Result != nil && *a.Result == safety.Fail
}

// Title is a one-line summary used as notification title.
func (a Alert) Title() string {
	if a.Failed() {
		return "EatSafe: quality test failed"
	}
	return "EatSafe: " + a.Risk.String() + " contamination forecast"
}

// Message renders the alert as plain text.
func (a Alert) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", a.Kind)
	if a.BatchID != nil {
		fmt.Fprintf(&b, "batch: %d\n", *a.BatchID)
	}
	fmt.Fprintf(&b, "cfu: %d\n", a.CFU)
	fmt.Fprintf(&b, "risk: %s\n", a.Risk)
	if a.Result != nil {
		fmt.Fprintf(&b, "result: %s\n", *a.Result)
	}
	fmt.Fprintf(&b, "time: %s", a.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}

// Notifier delivers alerts to one destination. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Name() string
	Send(ctx context.Context, a Alert) error
	Close() error
}
