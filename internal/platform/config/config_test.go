package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func (s *ConfigSuite) TestDefault() {
	cfg := Default()
	s.NoError(cfg.Validate())
	s.Equal(24*time.Hour, cfg.Faucet.Cooldown)
	s.Equal(10*time.Second, cfg.Identity.Timeout)
	s.Equal(120*time.Second, cfg.Ledger.Timeout)

	amount, err := cfg.Faucet.GrantAmount()
	s.Require().NoError(err)
	s.Equal("10", amount.String())
}

func (s *ConfigSuite) TestApplyEnv() {
	s.Run("overrides defaults", func() {
		cfg := Default()
		err := cfg.applyEnv(envFrom(map[string]string{
			"FAUCET_AMOUNT":    "2.5",
			"FAUCET_COOLDOWN":  "1h",
			"STORE_DRIVER":     "postgres",
			"DATABASE_URL":     "postgres://localhost/faucet",
			"RATE_LIMIT_RPS":   "0.5",
			"RATE_LIMIT_BURST": "3",
		}))
		s.Require().NoError(err)
		s.Equal("2.5", cfg.Faucet.Amount)
		s.Equal(time.Hour, cfg.Faucet.Cooldown)
		s.Equal(StorePostgres, cfg.Store.Driver)
		s.Equal(0.5, cfg.RateLimit.RPS)
		s.Equal(3, cfg.RateLimit.Burst)
		s.NoError(cfg.Validate())
	})

	s.Run("malformed duration is reported", func() {
		cfg := Default()
		err := cfg.applyEnv(envFrom(map[string]string{"FAUCET_COOLDOWN": "a day"}))
		s.ErrorContains(err, "FAUCET_COOLDOWN")
	})
}

func (s *ConfigSuite) TestValidate() {
	s.Run("rejects non-positive amount", func() {
		cfg := Default()
		cfg.Faucet.Amount = "0"
		s.ErrorContains(cfg.Validate(), "amount must be positive")
	})

	s.Run("rejects unknown modes", func() {
		cfg := Default()
		cfg.Ledger.Mode = "chain"
		cfg.Store.Driver = "mongo"
		err := cfg.Validate()
		s.ErrorContains(err, `unknown ledger mode "chain"`)
		s.ErrorContains(err, `unknown store driver "mongo"`)
	})

	s.Run("remote ledger needs a url", func() {
		cfg := Default()
		cfg.Ledger.Mode = ModeRemote
		s.ErrorContains(cfg.Validate(), "remote ledger requires a URL")
	})
}

func (s *ConfigSuite) TestLoadFile() {
	path := filepath.Join(s.T().TempDir(), "faucet.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
faucet:
  amount: "25"
  cooldown: 12h
store:
  driver: memory
identity:
  mode: remote
  trusted_domain: example.org
`), 0o600))

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("25", cfg.Faucet.Amount)
	s.Equal(12*time.Hour, cfg.Faucet.Cooldown)
	s.Equal(StoreMemory, cfg.Store.Driver)
	s.Equal("example.org", cfg.Identity.TrustedDomain)
	s.Equal(":8080", cfg.Server.Addr, "unset keys keep defaults")
}
