package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	PasswordUpgradeCost int64
	MaxPasswordLength   int
	SourceCodeMarketDir string
	SessionTTL          time.Duration
	Debug               bool
}

// Defaults used when neither a flag nor an env variable is set
const (
	DefaultPort                = 8888
	DefaultPasswordUpgradeCost = 1000
	DefaultMaxPasswordLength   = 7
	DefaultSourceCodeMarketDir = "files/source_code_market"
	DefaultSessionTTL          = 24 * time.Hour
)

// ParseFlags validates flags and fills the rest from the environment.
// A .env file in the working directory is loaded first if present; it never
// overrides variables that are already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := flag.NewFlagSet("blackmarket", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Game settings
	fs.Int64Var(&cfg.PasswordUpgradeCost, "password-upgrade", 0, "Cost of a password hash upgrade")
	fs.IntVar(&cfg.MaxPasswordLength, "max-password-length", 0, "Maximum length of an upgraded password")
	fs.StringVar(&cfg.SourceCodeMarketDir, "source-dir", "", "Directory holding base64 encoded source code")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Lifetime of a login session")
	fs.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.PasswordUpgradeCost == 0 {
		if v := os.Getenv("PASSWORD_UPGRADE_COST"); v != "" {
			cost, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Config{}, errors.New("invalid PASSWORD_UPGRADE_COST env variable")
			}
			cfg.PasswordUpgradeCost = cost
		} else {
			cfg.PasswordUpgradeCost = DefaultPasswordUpgradeCost
		}
	}
	if cfg.PasswordUpgradeCost < 0 {
		return Config{}, errors.New("password upgrade cost cannot be negative")
	}

	if cfg.MaxPasswordLength == 0 {
		if v := os.Getenv("MAX_PASSWORD_LENGTH"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return Config{}, errors.New("invalid MAX_PASSWORD_LENGTH env variable")
			}
			cfg.MaxPasswordLength = n
		} else {
			cfg.MaxPasswordLength = DefaultMaxPasswordLength
		}
	}
	if cfg.MaxPasswordLength < 1 {
		return Config{}, errors.New("max password length must be positive")
	}

	if cfg.SourceCodeMarketDir == "" {
		cfg.SourceCodeMarketDir = os.Getenv("SOURCE_CODE_MARKET_DIR")
		if cfg.SourceCodeMarketDir == "" {
			cfg.SourceCodeMarketDir = DefaultSourceCodeMarketDir
		}
	}

	if cfg.SessionTTL == 0 {
		if v := os.Getenv("SESSION_TTL"); v != "" {
			ttl, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, errors.New("invalid SESSION_TTL env variable")
			}
			cfg.SessionTTL = ttl
		} else {
			cfg.SessionTTL = DefaultSessionTTL
		}
	}

	if !cfg.Debug {
		cfg.Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))
	}

	return cfg, nil
}
