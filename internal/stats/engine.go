// Package stats formats windowed aggregates over the results log.
package stats

import (
	"context"
	"fmt"

	"percentbot/internal/domain"
	"percentbot/internal/storage"
)

// Supported aggregation windows in days.
const (
	WindowWeek  = 7
	WindowMonth = 30
	WindowYear  = 365
	// WindowAllTime approximates "all-time" as ten years, which keeps the
	// storage aggregate free of special cases.
	WindowAllTime = 3650
)

// Aggregator is the slice of the store the engine reads.
type Aggregator interface {
	Aggregate(ctx context.Context, windowDays int) (storage.Aggregate, error)
}

// Summary is a display-ready aggregate for one window.
type Summary struct {
	Label   string
	Days    int
	Average float64
	Count   int
}

// Engine is a stateless policy layer over the store aggregate.
type Engine struct {
	store Aggregator
}

// NewEngine constructs an Engine over the given aggregator.
func NewEngine(store Aggregator) *Engine {
	return &Engine{store: store}
}

var fixedWindows = []struct {
	label string
	days  int
}{
	{"Week", WindowWeek},
	{"Month", WindowMonth},
	{"Year", WindowYear},
	{"All time", WindowAllTime},
}

// Window aggregates a single trailing window of the given length.
func (e *Engine) Window(ctx context.Context, days int) (Summary, error) {
	if days <= 0 {
		return Summary{}, domain.NewValidationError(fmt.Sprintf("window %d must be positive", days))
	}
	agg, err := e.store.Aggregate(ctx, days)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Label:   labelFor(days),
		Days:    days,
		Average: agg.Average,
		Count:   agg.Count,
	}, nil
}

// Overview aggregates every fixed window in display order.
func (e *Engine) Overview(ctx context.Context) ([]Summary, error) {
	out := make([]Summary, 0, len(fixedWindows))
	for _, w := range fixedWindows {
		agg, err := e.store.Aggregate(ctx, w.days)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{
			Label:   w.label,
			Days:    w.days,
			Average: agg.Average,
			Count:   agg.Count,
		})
	}
	return out, nil
}

func labelFor(days int) string {
	for _, w := range fixedWindows {
		if w.days == days {
			return w.label
		}
	}
	return fmt.Sprintf("%d days", days)
}
