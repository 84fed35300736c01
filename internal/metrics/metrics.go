// Package metrics exposes Prometheus counters for update processing and an
// optional /metrics HTTP listener.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"percentbot/core/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	tele "gopkg.in/telebot.v4"
)

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "percentbot_updates_total",
			Help: "Total number of Telegram updates received, by kind.",
		},
		[]string{"kind"},
	)
	testsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "percentbot_tests_total",
			Help: "Total number of test results generated.",
		},
	)
	handlerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "percentbot_handler_failures_total",
			Help: "Total number of handler errors, by error code.",
		},
		[]string{"code"},
	)
	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "percentbot_send_failures_total",
			Help: "Total number of outbound sends dropped after retries.",
		},
	)
)

func init() {
	prometheus.MustRegister(updatesTotal, testsTotal, handlerFailures, sendFailures)
}

// IncTest records one generated test result.
func IncTest() { testsTotal.Inc() }

// IncHandlerFailure records a handler error under its derived code.
func IncHandlerFailure(code string) {
	if code == "" {
		code = "UNKNOWN_ERROR"
	}
	handlerFailures.WithLabelValues(code).Inc()
}

// IncSendFailure records an outbound send dropped by the dispatcher.
func IncSendFailure() { sendFailures.Inc() }

// UpdatesMiddleware counts incoming updates by kind.
func UpdatesMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		kind := "other"
		switch {
		case upd.Callback != nil:
			kind = "callback"
		case upd.Message != nil:
			kind = "message"
		case upd.Query != nil:
			kind = "inline_query"
		}
		updatesTotal.WithLabelValues(kind).Inc()
		return next(c)
	}
}

// Serve runs the /metrics listener until ctx is done.
func Serve(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("metrics listener started",
			slog.String("event", "metrics.listen"),
			slog.String("listen", listen),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
