package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Relay struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		CORS    struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		Sweep struct {
			Enabled    bool   `yaml:"enabled"`
			Cron       string `yaml:"cron"`
			IdlePeriod string `yaml:"idle_period"`
		} `yaml:"sweep"`
	} `yaml:"relay"`
	Session struct {
		URL     string `yaml:"url"`
		Channel string `yaml:"channel"`
		UserID  int64  `yaml:"user_id"`
		Typing  struct {
			RemoteExpiry string `yaml:"remote_expiry"`
			LocalStop    string `yaml:"local_stop"`
		} `yaml:"typing"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns host:port for the relay HTTP server.
func (c *Config) Addr() string {
	addr := c.Relay.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Relay.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// SweepIdlePeriod parses the configured idle period, defaulting to one hour.
func (c *Config) SweepIdlePeriod() time.Duration {
	return parseDuration(c.Relay.Sweep.IdlePeriod, time.Hour)
}

// RemoteTypingExpiry parses the remote typing window, zero meaning default.
func (c *Config) RemoteTypingExpiry() time.Duration {
	return parseDuration(c.Session.Typing.RemoteExpiry, 0)
}

// LocalTypingStop parses the local auto-stop window, zero meaning default.
func (c *Config) LocalTypingStop() time.Duration {
	return parseDuration(c.Session.Typing.LocalStop, 0)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies environment overrides onto the provided cfg and
// reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("PUBCHAT_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Relay.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Relay.Port = pi
			}
		} else {
			cfg.Relay.Address = v
		}
	} else {
		if host := os.Getenv("PUBCHAT_ADDRESS"); host != "" {
			envUsed = true
			cfg.Relay.Address = host
		}
		if port := os.Getenv("PUBCHAT_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				cfg.Relay.Port = pi
			}
		}
	}

	if v := os.Getenv("PUBCHAT_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Relay.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("PUBCHAT_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.Relay.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("PUBCHAT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.Relay.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("PUBCHAT_SWEEP_CRON"); v != "" {
		envUsed = true
		cfg.Relay.Sweep.Enabled = true
		cfg.Relay.Sweep.Cron = v
	}
	if v := os.Getenv("PUBCHAT_SWEEP_IDLE"); v != "" {
		envUsed = true
		cfg.Relay.Sweep.IdlePeriod = v
	}

	if v := os.Getenv("PUBCHAT_RELAY_URL"); v != "" {
		envUsed = true
		cfg.Session.URL = v
	}
	if v := os.Getenv("PUBCHAT_CHANNEL"); v != "" {
		envUsed = true
		cfg.Session.Channel = v
	}
	if v := os.Getenv("PUBCHAT_USER_ID"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			envUsed = true
			cfg.Session.UserID = n
		}
	}
	if v := os.Getenv("PUBCHAT_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// LoadEffective loads config from the given path (file) and applies
// environment overrides. It returns the effective config and whether env
// vars were used.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided value
// and the environment variable `PUBCHAT_CONFIG` when the flag was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("PUBCHAT_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
