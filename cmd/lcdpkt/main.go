// Lcdpkt is a packet generator driven from a two-line character display.
//
// The operator assembles a packet layer by layer with five buttons, uploads
// it to the sender daemon, and starts, stops or single-steps transmission
// while the display shows the transmit bandwidth and CPU use. Without the
// hardware plate the display is emulated in the terminal.
//
// Usage:
//
//	lcdpkt [command] [flags]
//
// Running without arguments starts the panel.
// See 'lcdpkt --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "lcdpkt",
	Short: "LCD packet generator",
	Long: `A packet generator operated from a two-line character display.

Assemble Ether, Dot1Q, IP, TCP, UDP and raw layers with the plate buttons,
upload the packet to the sender daemon and control transmission.

If no command is specified, the panel starts automatically.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(); err != nil {
			return err
		}
		return logging.InitializeWithOptions(logging.Options{Level: logLevel, File: logFile})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runPanel,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $LCDPKT_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; default: $LCDPKT_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file (default: $LCDPKT_LOG_FILE, then stdout)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lcdpkt %s\n", version.Full())
	},
}
