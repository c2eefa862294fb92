// Package control implements the modulator's textual remote-control
// channel (spec.md section 6): ping/get/set requests over a UDP
// datagram socket, mutating atomic knobs. The encode path reads Muted
// once per ETI frame and GainFactor once per transmission frame for
// telemetry only; the encoder's gain stage keeps the mode and factor it
// was built with, so gain changes made here are stored and reported but
// do not alter the output samples. It never takes a lock on the hot path.
package control

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dbehnke/dabmod/pkg/logger"
)

// Knobs are the atomic scalars the control channel mutates, per spec.md
// section 5's "no locks on the DSP path" rule. Only Muted affects the
// encode path (cmd/dabmod skips encoding while it is set); GainFactor
// feeds telemetry and GainMode is only read back by get.
type Knobs struct {
	GainFactor *AtomicFloat64
	GainMode   *AtomicString
	Muted      *AtomicBool
}

// NewKnobs builds a Knobs set with the given initial gain factor/mode.
func NewKnobs(gainFactor float64, gainMode string) *Knobs {
	k := &Knobs{
		GainFactor: NewAtomicFloat64(gainFactor),
		GainMode:   NewAtomicString(gainMode),
		Muted:      NewAtomicBool(false),
	}
	return k
}

// Server is a UDP request/reply server implementing the ping/get/set
// protocol of spec.md section 6. Requests and replies are whitespace-
// separated newline-terminated text datagrams.
type Server struct {
	addr  string
	log   *logger.Logger
	knobs *Knobs
	conn  *net.UDPConn

	// OnRequest, if set, is called once per handled request with its verb
	// (used to drive the dabmod_control_requests_total metric without this
	// package importing pkg/metrics directly).
	OnRequest func(verb string)
}

// NewServer builds a control server bound to addr (host:port), mutating knobs.
func NewServer(addr string, knobs *Knobs, log *logger.Logger) *Server {
	return &Server{addr: addr, knobs: knobs, log: log.WithComponent("control")}
}

// Start listens on the configured address and serves requests until ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.log.Info("control server started", logger.String("addr", conn.LocalAddr().String()))

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			s.log.Warn("control read error", logger.Error(err))
			continue
		}

		reply := s.handle(string(buf[:n]))
		if _, err := conn.WriteToUDP([]byte(reply+"\n"), from); err != nil {
			s.log.Warn("control reply error", logger.Error(err), logger.String("addr", from.String()))
		}
	}
}

// handle parses and executes one request line, returning the reply text.
func (s *Server) handle(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "fail empty request"
	}
	verb := fields[0]
	if s.OnRequest != nil {
		s.OnRequest(verb)
	}

	switch verb {
	case "ping":
		return "ok"

	case "get":
		if len(fields) != 3 {
			return "fail get requires module and param"
		}
		return s.get(fields[1], fields[2])

	case "set":
		if len(fields) != 4 {
			return "fail set requires module, param and value"
		}
		return s.set(fields[1], fields[2], fields[3])

	default:
		return "fail unknown verb " + verb
	}
}

func (s *Server) get(module, param string) string {
	switch module {
	case "gain":
		switch param {
		case "digital":
			return strconv.FormatFloat(s.knobs.GainFactor.Load(), 'f', -1, 64)
		case "mode":
			return s.knobs.GainMode.Load()
		}
	case "mute":
		if param == "state" {
			if s.knobs.Muted.Load() {
				return "1"
			}
			return "0"
		}
	}
	return "fail unknown param " + module + "." + param
}

func (s *Server) set(module, param, value string) string {
	switch module {
	case "gain":
		switch param {
		case "digital":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				return "fail invalid gain factor"
			}
			s.knobs.GainFactor.Store(f)
			return "ok"
		case "mode":
			switch value {
			case "fix", "max", "var":
				s.knobs.GainMode.Store(value)
				return "ok"
			default:
				return "fail unknown gain mode " + value
			}
		}
	case "mute":
		if param == "state" {
			switch value {
			case "1", "true", "on":
				s.knobs.Muted.Store(true)
				return "ok"
			case "0", "false", "off":
				s.knobs.Muted.Store(false)
				return "ok"
			default:
				return "fail invalid mute value"
			}
		}
	}
	return "fail unknown param " + module + "." + param
}
