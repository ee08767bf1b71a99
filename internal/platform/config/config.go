package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	ModeMock   = "mock"
	ModeRemote = "remote"
)

// Config is the full runtime configuration. Values are layered: Default,
// then an optional YAML file, then environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Faucet    FaucetConfig    `yaml:"faucet"`
	Store     StoreConfig     `yaml:"store"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Identity  IdentityConfig  `yaml:"identity"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FaucetConfig holds the grant policy.
type FaucetConfig struct {
	// Amount is a decimal string so YAML never rounds it through float64.
	Amount   string        `yaml:"amount"`
	Cooldown time.Duration `yaml:"cooldown"`
}

// GrantAmount parses Amount.
func (f FaucetConfig) GrantAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("faucet amount %q: %w", f.Amount, err)
	}
	return amount, nil
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	// Path is the SQLite file for the sqlite driver.
	Path string `yaml:"path"`
	// DSN is the Postgres connection string for the postgres driver.
	DSN string `yaml:"dsn"`
}

type LedgerConfig struct {
	Mode    string        `yaml:"mode"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type IdentityConfig struct {
	Mode          string        `yaml:"mode"`
	OracleURL     string        `yaml:"oracle_url"`
	APIKey        string        `yaml:"api_key"`
	TrustedDomain string        `yaml:"trusted_domain"`
	Timeout       time.Duration `yaml:"timeout"`
}

// RedisConfig configures the optional Redis client. Empty URL disables it.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RateLimitConfig throttles ingress per client IP. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64       `yaml:"rps"`
	Burst int           `yaml:"burst"`
	TTL   time.Duration `yaml:"ttl"`
}

// Default returns a configuration that runs locally with mock collaborators.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Faucet: FaucetConfig{
			Amount:   "10",
			Cooldown: 24 * time.Hour,
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Path:   "faucet.db",
		},
		Ledger: LedgerConfig{
			Mode:    ModeMock,
			Timeout: 120 * time.Second,
		},
		Identity: IdentityConfig{
			Mode:          ModeMock,
			OracleURL:     "https://www.moltbook.com/api/v1",
			TrustedDomain: "moltbook.com",
			Timeout:       10 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   5,
			Burst: 10,
			TTL:   10 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load layers an optional YAML file and the environment over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("FAUCET_ADDR", &c.Server.Addr)
	str("FAUCET_AMOUNT", &c.Faucet.Amount)
	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)
	str("DATABASE_URL", &c.Store.DSN)
	str("LEDGER_MODE", &c.Ledger.Mode)
	str("LEDGER_URL", &c.Ledger.URL)
	str("LEDGER_API_KEY", &c.Ledger.APIKey)
	str("IDENTITY_MODE", &c.Identity.Mode)
	str("IDENTITY_ORACLE_URL", &c.Identity.OracleURL)
	str("IDENTITY_API_KEY", &c.Identity.APIKey)
	str("IDENTITY_TRUSTED_DOMAIN", &c.Identity.TrustedDomain)
	str("REDIS_URL", &c.Redis.URL)
	str("LOG_LEVEL", &c.LogLevel)

	if err := dur("FAUCET_COOLDOWN", &c.Faucet.Cooldown); err != nil {
		return err
	}
	if err := dur("LEDGER_TIMEOUT", &c.Ledger.Timeout); err != nil {
		return err
	}
	if err := dur("IDENTITY_TIMEOUT", &c.Identity.Timeout); err != nil {
		return err
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = rps
	}
	if v := getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = burst
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	amount, err := c.Faucet.GrantAmount()
	if err != nil {
		errs = append(errs, err)
	} else if !amount.IsPositive() {
		errs = append(errs, errors.New("faucet amount must be positive"))
	}
	if c.Faucet.Cooldown <= 0 {
		errs = append(errs, errors.New("faucet cooldown must be positive"))
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("sqlite store requires a path"))
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("postgres store requires a DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Ledger.Mode {
	case ModeMock:
	case ModeRemote:
		if c.Ledger.URL == "" {
			errs = append(errs, errors.New("remote ledger requires a URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ledger mode %q", c.Ledger.Mode))
	}

	switch c.Identity.Mode {
	case ModeMock:
	case ModeRemote:
		if c.Identity.OracleURL == "" {
			errs = append(errs, errors.New("remote identity requires an oracle URL"))
		}
		if c.Identity.TrustedDomain == "" {
			errs = append(errs, errors.New("remote identity requires a trusted domain"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown identity mode %q", c.Identity.Mode))
	}

	if c.Ledger.Timeout <= 0 || c.Identity.Timeout <= 0 {
		errs = append(errs, errors.New("collaborator timeouts must be positive"))
	}

	return errors.Join(errs...)
}
