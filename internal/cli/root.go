// Package cli wires the tribalkb commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tribalkb/internal/config"
	"github.com/telhawk-systems/tribalkb/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tribalkb",
	Short: "Entity tribal knowledge extraction",
	Long: `tribalkb folds security-investigation case records into a per-entity
knowledge base: for every user, host, or IP observed across cases, an
aggregated profile of the signals it appeared in, its roles, and its
statistical behavior.

It also runs the historical tactic-chain relevance analysis over signal
dumps.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tribalkb.yaml or $HOME/.tribalkb/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("output-format", "table", "output format for inspection commands: table, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.Default()
	}

	level := cfg.Logging.Level
	if flagLevel, _ := rootCmd.PersistentFlags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	logger = logging.New(logging.ParseLevel(level), cfg.Logging.Format).WithRun()
}
