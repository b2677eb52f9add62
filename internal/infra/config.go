package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Natsgol/Seilor.fun/internal/curve"
)

// Config holds every application setting. Sensitive values can be overridden
// through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trading struct {
		// Mode selects the settlement backend: SIM, MOCK or CHAIN.
		Mode           string `yaml:"mode"`
		PlatformFeeBps uint32 `yaml:"platform_fee_bps"`
		MaxTradeQty    uint64 `yaml:"max_trade_qty"`
	} `yaml:"trading"`

	Curve curve.Params `yaml:"curve"`

	Settlement struct {
		RPCURL           string `yaml:"rpc_url"`
		WSURL            string `yaml:"ws_url"`
		ChainID          string `yaml:"chain_id"`
		AdminAccount     string `yaml:"admin_account"`
		SigningKey       string `yaml:"signing_key"`
		SubmitTimeoutSec int    `yaml:"submit_timeout_sec"`
	} `yaml:"settlement"`

	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment overrides
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a runnable SIM-mode configuration, used when no
// config file is present.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "seilor"
	cfg.App.Version = "dev"
	cfg.Trading.Mode = "SIM"
	cfg.Trading.PlatformFeeBps = 100
	cfg.Trading.MaxTradeQty = 10_000
	cfg.Curve = curve.DefaultParams()
	cfg.Server.ListenAddr = ":8080"
	cfg.Logging.Level = "info"
	return &cfg
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	switch c.Trading.Mode {
	case "SIM", "MOCK", "CHAIN":
	default:
		return fmt.Errorf("unknown trading mode: %q", c.Trading.Mode)
	}
	if c.Trading.PlatformFeeBps > 10000 {
		return fmt.Errorf("platform fee %d bps exceeds 100%%", c.Trading.PlatformFeeBps)
	}
	if c.Trading.MaxTradeQty == 0 {
		return fmt.Errorf("max trade quantity must be positive")
	}

	if c.Curve.InitialPriceMicros <= 0 || c.Curve.IncrementMicros <= 0 {
		return fmt.Errorf("curve prices must be positive")
	}
	if c.Curve.MaxSupply == 0 {
		return fmt.Errorf("curve max supply must be positive")
	}

	if c.Trading.Mode == "CHAIN" {
		if !hasPrefix(c.Settlement.RPCURL, "http://") && !hasPrefix(c.Settlement.RPCURL, "https://") {
			return fmt.Errorf("invalid settlement RPC URL: %s", c.Settlement.RPCURL)
		}
		if !hasPrefix(c.Settlement.WSURL, "ws://") && !hasPrefix(c.Settlement.WSURL, "wss://") {
			return fmt.Errorf("invalid settlement WS URL: %s", c.Settlement.WSURL)
		}
		if c.Settlement.SigningKey == "" {
			return fmt.Errorf("CHAIN mode requires a signing key")
		}
	}

	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server listen address is required")
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv replaces config values with environment variables when
// present. Rule #5: environment variables win over the file, so secrets never
// need to live on disk.
func overrideWithEnv(cfg *Config) {
	if cfg.Settlement.SigningKey != "" {
		// Using fmt instead of slog to avoid import cycle
		fmt.Println("⚠️  SECURITY WARNING: signing key found in config file.")
		fmt.Println("   Recommendation: use the SEILOR_SIGNING_KEY environment variable instead.")
	}

	if mode := os.Getenv("SEILOR_MODE"); mode != "" {
		cfg.Trading.Mode = mode
	}
	if url := os.Getenv("SEILOR_RPC_URL"); url != "" {
		cfg.Settlement.RPCURL = url
	}
	if url := os.Getenv("SEILOR_WS_URL"); url != "" {
		cfg.Settlement.WSURL = url
	}
	if key := os.Getenv("SEILOR_SIGNING_KEY"); key != "" {
		cfg.Settlement.SigningKey = key
	}
	if admin := os.Getenv("SEILOR_ADMIN_ACCOUNT"); admin != "" {
		cfg.Settlement.AdminAccount = admin
	}
	if addr := os.Getenv("SEILOR_LISTEN_ADDR"); addr != "" {
		cfg.Server.ListenAddr = addr
	}
}
