package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/rohmanhakim/shell-cache/internal/lifecycle"
	"github.com/rohmanhakim/shell-cache/internal/manager"
	"github.com/rohmanhakim/shell-cache/internal/strategy"
	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

/*
Responsibilities

- Adapt the cache manager onto net/http
- Write response snapshots back out: status, headers, body
- Tag every response with the source it was served from

Serving Semantics

- An error from the manager surfaces as 502; the interception layer never
  fabricates content on its own
- The X-Serve-Source header carries network/cache/fallback for debugging;
  nothing in the layer reads it back

Control Endpoints

- POST /-/push delivers a push payload to the notification handler
- POST /-/replay/flush replays queued mutations; the response reports how
  many were delivered
- The /-/ prefix is reserved; control paths are never forwarded to a
  strategy
*/

const (
	serveSourceHeader = "X-Serve-Source"

	pushPath        = "/-/push"
	replayFlushPath = "/-/replay/flush"
)

type Handler interface {
	Handle(ctx context.Context, req *http.Request) (strategy.Result, failure.ClassifiedError)
}

// PushReceiver accepts raw push payloads. Handlers that also implement it get
// the push control endpoint.
type PushReceiver interface {
	HandlePush(ctx context.Context, payload []byte) failure.ClassifiedError
}

// ReplayFlusher drains the deferred-mutation queue. Handlers that also
// implement it get the flush control endpoint.
type ReplayFlusher interface {
	FlushReplay(ctx context.Context) (int, failure.ClassifiedError)
}

type Server struct {
	handler Handler
	logger  *zap.Logger
}

func New(handler Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		handler: handler,
		logger:  logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case pushPath:
		s.servePush(w, r)
		return
	case replayFlushPath:
		s.serveReplayFlush(w, r)
		return
	}

	result, err := s.handler.Handle(r.Context(), r)
	if err != nil {
		s.logger.Warn("request failed",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.Error(err),
		)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	header := w.Header()
	for key, values := range result.Entry.Header() {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	header.Set(serveSourceHeader, result.Source.String())
	w.WriteHeader(result.Entry.StatusCode())
	_, _ = w.Write(result.Entry.Body())
}

func (s *Server) servePush(w http.ResponseWriter, r *http.Request) {
	receiver, ok := s.handler.(PushReceiver)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, readErr := io.ReadAll(r.Body)
	if readErr != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := receiver.HandlePush(r.Context(), payload); err != nil {
		s.logger.Warn("push rejected", zap.Error(err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveReplayFlush(w http.ResponseWriter, r *http.Request) {
	flusher, ok := s.handler.(ReplayFlusher)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	delivered, err := flusher.FlushReplay(r.Context())
	if err != nil {
		s.logger.Warn("replay flush stopped", zap.Int("delivered", delivered), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"delivered": delivered})
}

// Run installs, activates and serves until ctx is cancelled.
func Run(ctx context.Context, m *manager.CacheManager, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := m.Install(ctx); err != nil {
		return err
	}
	if err := m.Activate(ctx); err != nil {
		return err
	}
	logger.Info("interception layer active",
		zap.String("addr", addr),
		zap.String("state", lifecycle.StateActive.String()),
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: New(m, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = httpServer.Shutdown(context.Background())
		return nil
	case err := <-errCh:
		return err
	}
}
