package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/switchlog/switchlog/internal/slack"
)

// maxBodySize bounds event payloads; Slack events are small.
const maxBodySize = 1 << 20

// shutdownTimeout bounds graceful drain on shutdown.
const shutdownTimeout = 10 * time.Second

// Server is the Slack events webhook server.
type Server struct {
	verifier *slack.Verifier
	recorder *Recorder
	log      *slog.Logger
	httpSrv  *http.Server
}

// New creates a Server listening on addr.
func New(addr string, verifier *slack.Verifier, recorder *Recorder, log *slog.Logger) *Server {
	s := &Server{
		verifier: verifier,
		recorder: recorder,
		log:      log,
	}

	mux := http.NewServeMux()
	// Method-qualified ServeMux patterns need Go 1.22+; enforce the method
	// explicitly so this runs on Go 1.21.
	mux.HandleFunc("/slack/events", requireMethod(http.MethodPost, s.handleEvents))
	mux.HandleFunc("/healthz", requireMethod(http.MethodGet, s.handleHealthz))

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Run serves until the context is canceled, then drains gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Handler exposes the server's handler (for tests).
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "reading body", http.StatusBadRequest)
		return
	}

	if err := s.verifier.Verify(r.Header, body); err != nil {
		s.log.Warn("rejecting unsigned request", "err", err)
		http.Error(w, "invalid request signature", http.StatusForbidden)
		return
	}

	payload, err := slack.ParseEventPayload(body)
	if err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	// Slack's endpoint-ownership handshake
	if payload.Type == slack.PayloadURLVerification {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, payload.Challenge)
		return
	}

	if ev, ok := payload.MessageEvent(); ok {
		if err := s.recorder.HandleMessage(r.Context(), ev); err != nil {
			s.log.Error("handling message failed", "channel", ev.Channel, "err", err)
			// Still 200: Slack retries on non-2xx and the failure is ours,
			// not a malformed event.
		}
	}

	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, "ok")
}

// requireMethod rejects requests whose method differs, matching the
// behavior of Go 1.22 method-qualified mux patterns.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// logRequests is a minimal request-logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
