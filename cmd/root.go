package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/go-b5-metrics/internal/config"
	"github.com/pable/go-b5-metrics/internal/logger"
)

var (
	dataDir  string
	dbPath   string
	logLevel string

	cfg *config.Config
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "b5stats",
	Short: "Baseball 5 match recorder",
	Long: `Record a Baseball 5 match play by play and derive batting, fielding and
hit-zone statistics. The match in progress is kept in the data directory;
completed matches are archived in a SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the match in progress (default $B5_DATA_DIR or ~/.b5stats)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite match archive (default $B5_DB_PATH or <data-dir>/archive.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $B5_LOG_LEVEL or info)")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(batCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(inningCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads the configuration and applies flag overrides before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	boot := logger.New(os.Stderr, os.Getenv("B5_LOG_LEVEL"))
	cfg = config.Load(boot)

	if dataDir != "" {
		cfg.DataDir = dataDir
		if !cmd.Flags().Changed("db") && os.Getenv("B5_DB_PATH") == "" {
			cfg.DBPath = filepath.Join(dataDir, "archive.db")
		}
		if os.Getenv("B5_STORAGE_KEY_FILE") == "" {
			cfg.KeyFile = filepath.Join(dataDir, "master.key")
		}
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log = logger.New(os.Stderr, cfg.LogLevel)
	return nil
}
