package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/dbehnke/dabmod/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the Prometheus text exposition format over HTTP, per
// spec_full.md section 4.13. It registers against the default
// Prometheus registry that NewCollector's promauto calls populate.
type Server struct {
	addr string
	path string
	log  *logger.Logger
}

// NewServer builds a metrics server bound to addr, serving /metrics
// (or the configured path).
func NewServer(addr, path string, log *logger.Logger) *Server {
	if path == "" {
		path = "/metrics"
	}
	return &Server{addr: addr, path: path, log: log.WithComponent("metrics")}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.Handler())

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.log.Info("metrics server started", logger.String("addr", ln.Addr().String()), logger.String("path", s.path))

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
