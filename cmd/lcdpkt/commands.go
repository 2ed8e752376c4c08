package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/lcdpacket/internal/assembly"
	"github.com/muurk/lcdpacket/internal/config"
	"github.com/muurk/lcdpacket/internal/console"
	"github.com/muurk/lcdpacket/internal/discovery"
	"github.com/muurk/lcdpacket/internal/input"
	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/packet"
	"github.com/muurk/lcdpacket/internal/status"
	"github.com/muurk/lcdpacket/internal/transport"
	"github.com/muurk/lcdpacket/internal/ui"
	"github.com/muurk/lcdpacket/internal/version"
)

// Command flags
var (
	senderAddr     string
	senderInstance string
	discoverWait   time.Duration
	tomlOutput     bool
	forceInit      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&senderAddr, "sender", "", "Sender address: unix socket path, tcp://host:port or ws://host:port/path")
	rootCmd.PersistentFlags().StringVar(&senderInstance, "instance", "", "Sender mDNS instance to look up when no address is given")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func loadEnv() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	return nil
}

// resolveConfigPath returns --config, or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// loadConfig reads the config file and applies the log preferences it holds
// unless flags or the environment already set them.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}

	level, file := logLevel, logFile
	if level == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		level = cfg.Log.Level
	}
	if file == "" && os.Getenv(logging.LogFileEnvVar) == "" {
		file = cfg.Log.File
	}
	if level != logLevel || file != logFile {
		if err := logging.InitializeWithOptions(logging.Options{Level: level, File: file}); err != nil {
			return nil, path, err
		}
	}
	return cfg, path, nil
}

// runCmd starts the panel
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the panel",
	Long: `Start the packet generator panel.

The display is emulated in the terminal: the arrow keys are the plate's
direction buttons and Enter is Select. On the idle screen:

  Select  assemble a packet and upload it
  Up      start sending continuously
  Down    stop sending
  Right   change the delay between packets
  Left    send the packet once`,
	Example: `  # Connect to a local sender socket
  lcdpkt run --sender /run/lcdpkt/sender.sock

  # Connect to a sender found by mDNS
  lcdpkt run --instance bench-pi

  # Verbose logging to a file
  lcdpkt run --log-level debug --log-file /tmp/lcdpkt.log`,
	RunE: runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectSender(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	emu := lcd.NewEmulator(cfg.Display.Width)
	panel := lcd.NewPanel(emu, cfg.Display.Width, cfg.Display.Tick.Std())
	runner := input.NewRunner(panel)

	defaults := config.NewDefaults(cfg, config.LookupInterface)
	opts := []assembly.Option{
		assembly.WithHold(cfg.Display.Hold.Std()),
		assembly.WithRawMessages(cfg.Packet.RawMessages),
	}
	if cfg.Packet.PcapFile != "" {
		opts = append(opts, assembly.WithLoader(packet.PcapLoader{Path: cfg.Packet.PcapFile}))
	}
	ctrl := assembly.New(runner, defaults.Catalog(), packet.NewBuilder(), opts...)

	var counter status.BandwidthSource
	if cfg.Interface != "" {
		counter = status.NewInterfaceCounter("", cfg.Interface)
	}
	refresher := status.New(panel,
		status.Fallback{Primary: client, Secondary: counter},
		status.NewCPUSampler(""),
		cfg.Display.Refresh.Std())

	con := console.New(runner, ctrl, client,
		console.WithDelay(cfg.Packet.Delay.Std()),
		console.WithHold(cfg.Display.Hold.Std()),
		console.WithSaveDir(cfg.Packet.SaveDir))

	logging.Info("Panel starting",
		zap.String("sender", client.Addr()),
		zap.String("interface", cfg.Interface),
		zap.String("version", version.Version))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// Quitting the emulator ends the session.
	g.Go(func() error {
		defer cancel()
		return emu.Run(gctx)
	})
	g.Go(func() error {
		splash := version.Splash()
		if err := runner.Show(gctx, splash[0]+"\n"+splash[1], cfg.Display.Hold.Std()); err != nil {
			return err
		}
		return con.Run(gctx)
	})
	g.Go(func() error {
		return refresher.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connectSender dials the configured sender, looking it up by mDNS instance
// when no address is set.
func connectSender(ctx context.Context, cfg *config.Config) (*transport.Client, error) {
	addr := firstNonEmpty(senderAddr, cfg.Sender.Address)
	instance := firstNonEmpty(senderInstance, cfg.Sender.Instance)

	if addr == "" {
		if instance == "" {
			return nil, errors.New("no sender configured: use --sender, --instance or sender.address in the config file")
		}
		scanner := discovery.NewScanner()
		scanner.Timeout = cfg.Sender.DiscoverTimeout.Std()
		found, err := scanner.Find(ctx, instance)
		if err != nil {
			return nil, fmt.Errorf("sender lookup failed: %w", err)
		}
		addr = found.URL()
		logging.Info("Sender discovered", zap.String("instance", instance), zap.String("address", addr))
	}

	client, err := transport.Dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sender: %w", err)
	}
	return client, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// catalogCmd lists the layer catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the layers and fields the panel can edit",
	Long: `List every layer with its fields, their edit templates and the plate
as it first appears, seeded with the configured or built-in default.

Live defaults (source MAC and IPv4 address) are read from the configured
interface.`,
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	p := ui.NewPrinter()
	iface := cfg.Interface
	if iface == "" {
		iface = "(none)"
	}
	p.PrintHeader("Layer Catalog", "lcdpkt catalog",
		ui.Param{Key: "Config", Value: path},
		ui.Param{Key: "Interface", Value: iface})

	out, err := ui.RenderCatalog(config.NewDefaults(cfg, config.LookupInterface).Catalog(), p.Width())
	if err != nil {
		p.PrintError("Catalog defaults are invalid", err, "Check the defaults section of "+path)
		return err
	}
	p.Println(out)
	return nil
}

// discoverCmd browses for senders
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find sender daemons on the network",
	Long: `Browse mDNS for sender daemons (` + discovery.ServiceType + `) and list their
WebSocket addresses.`,
	Example: `  # Quick 2-second browse (default)
  lcdpkt discover

  # Longer browse for busy networks
  lcdpkt discover --timeout 15s`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverWait, "timeout", 0, "How long to wait for answers (default: a quick scan)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	wait := discoverWait
	if wait <= 0 {
		wait = discovery.QuickScanTimeout
	}
	p := ui.NewPrinter()
	p.PrintHeader("Sender Discovery", "lcdpkt discover",
		ui.Param{Key: "Service", Value: discovery.ServiceType},
		ui.Param{Key: "Timeout", Value: wait.String()})

	var senders []*discovery.Sender
	var err error
	if discoverWait <= 0 {
		senders, err = discovery.QuickScan(cmd.Context())
	} else {
		scanner := discovery.NewScanner()
		scanner.Timeout = discoverWait
		senders, err = scanner.Scan(cmd.Context())
	}
	if err != nil {
		p.PrintError("Discovery failed", err, "Check that multicast is allowed on this network")
		return err
	}

	p.Println(ui.RenderSenders(senders, p.Width()))
	if len(senders) > 0 {
		p.Newline()
		p.Println(ui.TemplateStyle.Render("Use 'lcdpkt run --instance <name>' to connect"))
	}
	return nil
}

// configCmd groups the config file commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		p := ui.NewPrinter()
		if _, err := os.Stat(path); err == nil && !forceInit {
			p.PrintWarning("Configuration already exists", ui.Param{Key: "Path", Value: path})
			return fmt.Errorf("%s exists (use --force to overwrite)", path)
		}

		cfg := config.New()
		if err := cfg.Save(path); err != nil {
			p.PrintError("Could not write configuration", err)
			return err
		}
		p.PrintSuccess("Configuration written", ui.Param{Key: "Path", Value: path})
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.Encode(tomlOutput)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")
	configShowCmd.Flags().BoolVar(&tomlOutput, "toml", false, "Print as TOML instead of YAML")
}
