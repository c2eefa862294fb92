// Command dabmod is the DAB physical-layer modulator: it receives an
// ETI(NI) multiplex over EDI (PFT fragments or AF packets; raw ETI(NI)
// datagrams are rejected by the EDI receiver), runs it
// through the bit-domain and symbol-domain encoders and the OFDM
// stage, and writes gain-controlled I/Q samples to an output sink.
// Remote control, metrics, live monitoring and audit persistence are
// optional services started alongside the encode path.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dbehnke/dabmod/pkg/audit"
	"github.com/dbehnke/dabmod/pkg/config"
	"github.com/dbehnke/dabmod/pkg/control"
	"github.com/dbehnke/dabmod/pkg/edi"
	"github.com/dbehnke/dabmod/pkg/flowgraph"
	"github.com/dbehnke/dabmod/pkg/logger"
	"github.com/dbehnke/dabmod/pkg/metrics"
	"github.com/dbehnke/dabmod/pkg/monitor"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/output"
	"github.com/dbehnke/dabmod/pkg/subchannel"
)

const version = "0.1.0"

func main() {
	configFile := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	validateOnly := flag.Bool("validate", false, "load and validate configuration, then exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dabmod %s\n", version)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dabmod: configuration error: %v\n", err)
		os.Exit(1)
	}

	if *validateOnly {
		fmt.Println("configuration OK")
		return
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log.Info("starting dabmod", logger.String("version", version))

	if err := run(cfg, log); err != nil {
		log.Error("fatal error", logger.Error(err))
		os.Exit(1)
	}
}

// run wires every configured component and blocks until ctx is
// cancelled by SIGINT/SIGTERM.
func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	gainMode, err := config.GainMode(cfg.Gain.Mode)
	if err != nil {
		return err
	}

	var cicEq *ofdm.CicEqualizer

	subchannels := make([]subchannel.Subchannel, 0, len(cfg.Ensemble.Subchannels))
	for _, sc := range cfg.Ensemble.Subchannels {
		subchannels = append(subchannels, sc.ToSubchannel())
	}

	encoder, err := flowgraph.NewEncoder(cfg.Ensemble.Mode, cfg.Ensemble.OutputRate, subchannels, gainMode, cfg.Gain.Factor, cicEq)
	if err != nil {
		return fmt.Errorf("building encoder: %w", err)
	}

	sink, err := output.Open(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("opening output sink: %w", err)
	}
	defer sink.Close()

	knobs := control.NewKnobs(cfg.Gain.Factor, cfg.Gain.Mode)

	var auditWriter *audit.Writer
	if cfg.Audit.DBPath != "" {
		db, err := audit.Open(cfg.Audit.DBPath, log)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer db.Close()
		auditWriter = audit.NewWriter(audit.NewRepository(db.GetDB()), log)
	}

	var monitorHub *monitor.Hub
	if cfg.Monitor.Enabled {
		monitorHub = monitor.NewHub(log)
	}

	var wg sync.WaitGroup

	if cfg.Metrics.Enabled {
		startService(ctx, &wg, log, "metrics", func(ctx context.Context) error {
			return metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path, log).Start(ctx)
		})
	}

	if cfg.Control.Enabled {
		controlSrv := control.NewServer(cfg.Control.Listen, knobs, log)
		controlSrv.OnRequest = func(verb string) {
			collector.ControlRequest(verb)
			if auditWriter != nil {
				auditWriter.RecordControlEvent(audit.ControlEvent{Verb: verb})
			}
		}
		startService(ctx, &wg, log, "control", controlSrv.Start)
	}

	if monitorHub != nil {
		startService(ctx, &wg, log, "monitor", func(ctx context.Context) error {
			return monitor.NewServer(cfg.Monitor.Listen, monitorHub, log).Start(ctx)
		})
	}

	if auditWriter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWriter.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := serveEDI(ctx, cfg.Ensemble.EDIListen, encoder, sink, collector, knobs, monitorHub, auditWriter, log); err != nil && ctx.Err() == nil {
			log.Error("EDI listener stopped", logger.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	wg.Wait()
	return nil
}

// startService runs fn in a goroutine tracked by wg, logging any error
// that is not simply the context being cancelled.
func startService(ctx context.Context, wg *sync.WaitGroup, log *logger.Logger, name string, fn func(context.Context) error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Error(name+" service stopped", logger.Error(err))
		}
	}()
}

// serveEDI listens for EDI datagrams (one UDP payload per PushDatagram
// call; payloads that are neither PFT fragments nor AF packets, raw
// ETI(NI) frames included, are rejected), assembles ETI frames, and
// drives them through the encoder and sink.
func serveEDI(ctx context.Context, addr string, encoder *flowgraph.Encoder, sink *output.Sink, collector *metrics.Collector, knobs *control.Knobs, hub *monitor.Hub, auditWriter *audit.Writer, log *logger.Logger) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("EDI listener started", logger.String("addr", conn.LocalAddr().String()))

	receiver := edi.NewReceiver()
	receiver.OnUnknownTag = func(name string) {
		log.Debug("unknown TAG item ignored", logger.String("tag", name))
	}

	buf := make([]byte, 65536)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		frame, err := receiver.PushDatagram(buf[:n])
		if err != nil {
			collector.AFPacket(metrics.ResultCrcError)
			log.Warn("EDI datagram rejected", logger.Error(err))
			continue
		}
		if frame == nil {
			continue
		}
		collector.AFPacket(metrics.ResultOK)
		collector.ETIFrame()

		if err := processFrame(frame, encoder, sink, collector, knobs, hub, auditWriter, log); err != nil {
			log.Warn("frame processing failed", logger.Error(err))
		}
	}
}

// processFrame decodes one assembled ETI frame and, once a full
// transmission frame of I/Q samples has accumulated, writes it to the
// sink and publishes telemetry.
func processFrame(frame []byte, encoder *flowgraph.Encoder, sink *output.Sink, collector *metrics.Collector, knobs *control.Knobs, hub *monitor.Hub, auditWriter *audit.Writer, log *logger.Logger) error {
	pf, err := edi.ParseETIFrame(frame)
	if err != nil {
		return err
	}

	if knobs.Muted.Load() {
		return nil
	}

	samples, err := encoder.Process(pf)
	if err != nil {
		return err
	}
	if samples == nil {
		return nil
	}

	if err := sink.WriteSamples(samples); err != nil {
		return err
	}
	collector.TxFrame()
	gainFactor := knobs.GainFactor.Load()
	collector.SetGainFactor(gainFactor)

	if hub != nil {
		hub.Publish(monitor.FrameStats{FCT: pf.FCT, GainFactor: gainFactor})
	}
	if auditWriter != nil {
		auditWriter.RecordFrameSample(audit.FrameSample{FCT: pf.FCT, GainFactor: gainFactor})
	}

	return nil
}
