package monitor

import (
	"context"
	"net"
	"net/http"

	"github.com/dbehnke/dabmod/pkg/logger"
)

const dashboardPage = `<!DOCTYPE html>
<html>
<head><title>dabmod monitor</title></head>
<body>
<h1>dabmod live telemetry</h1>
<pre id="log"></pre>
<script>
const log = document.getElementById("log");
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (ev) => {
  log.textContent = ev.data + "\n" + log.textContent;
};
</script>
</body>
</html>
`

// Server serves the dashboard page and its websocket endpoint.
type Server struct {
	addr string
	hub  *Hub
	log  *logger.Logger
}

// NewServer builds a monitor server bound to addr, broadcasting through hub.
func NewServer(addr string, hub *Hub, log *logger.Logger) *Server {
	return &Server{addr: addr, hub: hub, log: log.WithComponent("monitor")}
}

// Start runs the hub's event loop and HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardPage))
	})

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.log.Info("monitor server started", logger.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
