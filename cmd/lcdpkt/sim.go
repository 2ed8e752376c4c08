package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/lcdpacket/internal/discovery"
	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/packet"
	"github.com/muurk/lcdpacket/internal/transport"
	"github.com/muurk/lcdpacket/internal/version"
)

// Simulator flags
var (
	simSocket   string
	simTCP      string
	simHTTP     string
	simAnnounce string
	simIface    string
	simCapture  string
	simCert     string
	simKey      string
)

// simCmd runs an in-process sender daemon
var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a simulated sender daemon",
	Long: `Run a sender daemon that speaks the control protocol without touching
the network. Packets it "sends" are counted and optionally written to a
pcap capture, so the panel can be exercised end to end on any machine.

The daemon listens on any combination of a Unix socket, a TCP port and a
WebSocket endpoint, and can announce the WebSocket endpoint over mDNS.`,
	Example: `  # Unix socket only
  lcdpkt sim --socket /tmp/lcdpkt.sock

  # WebSocket on port 8765, announced as "bench", capturing to a file
  lcdpkt sim --http :8765 --announce bench --capture /tmp/sent.pcap`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().StringVar(&simSocket, "socket", "", "Unix socket path to listen on")
	simCmd.Flags().StringVar(&simTCP, "tcp", "", "TCP address to listen on (e.g. :8764)")
	simCmd.Flags().StringVar(&simHTTP, "http", "", "HTTP address serving the WebSocket endpoint at "+discovery.DefaultPath)
	simCmd.Flags().StringVar(&simAnnounce, "announce", "", "mDNS instance name to announce the WebSocket endpoint under")
	simCmd.Flags().StringVar(&simIface, "iface", "", "Interface name advertised to panels")
	simCmd.Flags().StringVar(&simCapture, "capture", "", "Write every sent packet to this pcap file")
	simCmd.Flags().StringVar(&simCert, "cert", "", "TLS certificate for serving wss:// (with --key)")
	simCmd.Flags().StringVar(&simKey, "key", "", "TLS private key for serving wss:// (with --cert)")

	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, args []string) error {
	if simSocket == "" && simTCP == "" && simHTTP == "" {
		return errors.New("nothing to listen on: use --socket, --tcp or --http")
	}
	if simAnnounce != "" && simHTTP == "" {
		return errors.New("--announce needs --http")
	}
	if (simCert == "") != (simKey == "") {
		return errors.New("both --cert and --key must be provided together, or neither")
	}

	var sink transport.Sink
	if simCapture != "" {
		f, err := os.Create(simCapture)
		if err != nil {
			return fmt.Errorf("failed to create capture file: %w", err)
		}
		defer f.Close()
		w, err := packet.NewCaptureWriter(f)
		if err != nil {
			return err
		}
		sink = w
	}

	srv := transport.NewServer(transport.NewSender(sink))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if simSocket != "" {
		// A stale socket from an earlier run blocks the listen.
		_ = os.Remove(simSocket)
		ln, err := net.Listen("unix", simSocket)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", simSocket, err)
		}
		defer os.Remove(simSocket)
		g.Go(func() error { return srv.Serve(ln) })
	}

	if simTCP != "" {
		ln, err := net.Listen("tcp", simTCP)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", simTCP, err)
		}
		g.Go(func() error { return srv.Serve(ln) })
	}

	var httpSrv *http.Server
	if simHTTP != "" {
		ln, err := net.Listen("tcp", simHTTP)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", simHTTP, err)
		}
		mux := http.NewServeMux()
		mux.Handle(discovery.DefaultPath, srv)
		httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		secure := simCert != ""
		if secure {
			tlsCfg, err := transport.NewTLSConfig(simCert, simKey)
			if err != nil {
				return err
			}
			httpSrv.TLSConfig = tlsCfg
		}
		logging.Info("WebSocket endpoint listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("path", discovery.DefaultPath),
			zap.Bool("tls", secure))
		g.Go(func() error {
			var err error
			if secure {
				err = httpSrv.ServeTLS(ln, "", "")
			} else {
				err = httpSrv.Serve(ln)
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		if simAnnounce != "" {
			port := ln.Addr().(*net.TCPAddr).Port
			meta := map[string]string{
				discovery.MetaPath:      discovery.DefaultPath,
				discovery.MetaInterface: simIface,
				discovery.MetaVersion:   version.Version,
			}
			if secure {
				meta[discovery.MetaTLS] = "1"
			}
			ann, err := discovery.Announce(simAnnounce, port, meta)
			if err != nil {
				return err
			}
			defer ann.Shutdown()
		}
	}

	fmt.Printf("Sender simulator running (%s). Press Ctrl+C to stop.\n", listenSummary())

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if httpSrv != nil {
			_ = httpSrv.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func listenSummary() string {
	var parts []string
	if simSocket != "" {
		parts = append(parts, "unix:"+simSocket)
	}
	if simTCP != "" {
		parts = append(parts, "tcp:"+simTCP)
	}
	if simHTTP != "" {
		scheme := "ws:"
		if simCert != "" {
			scheme = "wss:"
		}
		parts = append(parts, scheme+simHTTP+discovery.DefaultPath)
	}
	if simAnnounce != "" {
		parts = append(parts, "mdns:"+strconv.Quote(simAnnounce))
	}
	return strings.Join(parts, ", ")
}
