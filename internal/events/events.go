// Package events announces finished analyses to browsers (WebSocket) and
// other services (NATS).
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// Event types.
const (
	TypeAnalysisComplete = "analysis_complete"
)

// Event is the message broadcast after each pipeline run.
type Event struct {
	Type       string                              `json:"type"`
	Queries    []string                            `json:"queries,omitempty"`
	SocialOnly bool                                `json:"social_only"`
	ReportURL  *string                             `json:"report_url"`
	Totals     map[string]models.SentimentOverview `json:"totals,omitempty"`
	Time       time.Time                           `json:"time"`
}

// AnalysisComplete builds the event for a finished report.
func AnalysisComplete(rep *models.AnalysisReport, socialOnly bool) Event {
	totals := make(map[string]models.SentimentOverview, len(rep.Results))
	for q, r := range rep.Results {
		totals[q] = r.Overview
	}
	return Event{
		Type:       TypeAnalysisComplete,
		Queries:    rep.Queries,
		SocialOnly: socialOnly,
		ReportURL:  rep.ReportURL,
		Totals:     totals,
		Time:       time.Now().UTC(),
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify publishes ev and logs any failure. Callers on the request path use
// it so a broken sink never fails a response.
func Notify(ctx context.Context, p Publisher, ev Event, logger *slog.Logger) {
	if p == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}

func record(sink string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EventsPublished.WithLabelValues(sink, status).Inc()
}
