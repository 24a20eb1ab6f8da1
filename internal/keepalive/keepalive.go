// ABOUTME: Hosting keep-alive helpers: health endpoint and self-ping loop
// ABOUTME: Runs independently of the dialog core and shares no state with it

package keepalive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Server exposes a minimal health endpoint so the hosting platform sees the
// process as alive.
type Server struct {
	addr   string
	logger *slog.Logger
	srv    *http.Server
}

// NewServer creates a health server on addr.
func NewServer(addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{addr: addr, logger: logger.With("component", "keepalive")}
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// Run serves the health endpoint until the context ends.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	s.logger.Info("health endpoint listening", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health server: %w", err)
	}
}

// Pinger periodically GETs a URL so the hosting platform does not idle the
// service out. Failures are logged and never propagate to the caller.
type Pinger struct {
	url    string
	every  time.Duration
	client *http.Client
	logger *slog.Logger
}

// NewPinger creates a pinger for url firing every interval.
func NewPinger(url string, every time.Duration, logger *slog.Logger) *Pinger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pinger{
		url:    url,
		every:  every,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With("component", "keepalive"),
	}
}

// Run pings until the context ends.
func (p *Pinger) Run(ctx context.Context) {
	p.logger.Info("keepalive ping started", "url", p.url, "every", p.every)
	ticker := time.NewTicker(p.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("keepalive request build failed", "error", err)
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("keepalive ping failed", "error", err)
		return
	}
	resp.Body.Close()
}
