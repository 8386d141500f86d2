package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"transcritor/internal/asr"

	"github.com/sirupsen/logrus"
)

type metrics struct {
	windows      atomic.Int64
	recognized   atomic.Int64
	unrecognized atomic.Int64
	failed       atomic.Int64
	captureNanos atomic.Int64
	asrNanos     atomic.Int64
}

func (m *metrics) observe(res asr.Result, capture, recognize time.Duration) {
	m.windows.Add(1)
	switch res.Outcome {
	case asr.Recognized:
		m.recognized.Add(1)
	case asr.Unrecognized:
		m.unrecognized.Add(1)
	default:
		m.failed.Add(1)
	}
	m.captureNanos.Add(int64(capture))
	m.asrNanos.Add(int64(recognize))
}

func (m *metrics) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "transcritor_windows_total %d\n", m.windows.Load())
		fmt.Fprintf(w, "transcritor_windows_recognized_total %d\n", m.recognized.Load())
		fmt.Fprintf(w, "transcritor_windows_unrecognized_total %d\n", m.unrecognized.Load())
		fmt.Fprintf(w, "transcritor_windows_failed_total %d\n", m.failed.Load())
		fmt.Fprintf(w, "transcritor_capture_seconds_total %.3f\n", time.Duration(m.captureNanos.Load()).Seconds())
		fmt.Fprintf(w, "transcritor_recognize_seconds_total %.3f\n", time.Duration(m.asrNanos.Load()).Seconds())
	})
	return mux
}

// serve exposes the counters until ctx is done.
func (m *metrics) serve(ctx context.Context, addr string, logger logrus.FieldLogger) {
	server := &http.Server{
		Addr:              addr,
		Handler:           m.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warnf("metrics server: %v", err)
	}
}
