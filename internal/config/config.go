package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the paths and settings of the recorder.
type Config struct {
	DataDir           string // holds the current-match slot
	DBPath            string // match archive
	LogLevel          string
	KeyFile           string // master key for the encrypted slot
	StoragePassphrase string // empty stores the slot unencrypted
}

// Load reads the given env files (".env" when none are given), then the
// process environment. Missing env files are not an error.
func Load(logger zerolog.Logger, envFiles ...string) *Config {
	if err := godotenv.Load(envFiles...); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	dataDir := getEnv("B5_DATA_DIR", filepath.Join(userHome(), ".b5stats"))
	cfg := &Config{
		DataDir:           dataDir,
		DBPath:            getEnv("B5_DB_PATH", filepath.Join(dataDir, "archive.db")),
		LogLevel:          getEnv("B5_LOG_LEVEL", "info"),
		KeyFile:           getEnv("B5_STORAGE_KEY_FILE", filepath.Join(dataDir, "master.key")),
		StoragePassphrase: os.Getenv("B5_STORAGE_PASSPHRASE"),
	}

	logger.Debug().
		Str("data_dir", cfg.DataDir).
		Str("db_path", cfg.DBPath).
		Str("log_level", cfg.LogLevel).
		Bool("encrypted", cfg.StoragePassphrase != "").
		Msg("configuration loaded")
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
