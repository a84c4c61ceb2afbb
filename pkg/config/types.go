package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Chain     ChainConfig     `yaml:"chain"`
	Check     CheckConfig     `yaml:"check"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
}

// ServerConfig holds http, storage and tls settings.
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	DBPath  string    `yaml:"db_path"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SecurityConfig holds CORS, request rate limiting and IP whitelist settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	IPWhitelist []string `yaml:"ip_whitelist"`
}

// ChainConfig configures the optional on-chain authorization gateway.
// An empty RPCEndpoint disables the gateway entirely; the pipeline then
// runs with local quota only.
type ChainConfig struct {
	RPCEndpoint string   `yaml:"rpc_endpoint"`
	Contract    string   `yaml:"contract"`
	Timeout     Duration `yaml:"timeout"`
}

// CheckConfig holds plagiarism check tunables.
type CheckConfig struct {
	MaxChecks           int       `yaml:"max_checks"`
	SimilarityThreshold float64   `yaml:"similarity_threshold"`
	MaxContentBytes     SizeBytes `yaml:"max_content_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RetentionConfig holds configuration for the check-log pruner. Paper
// records themselves are never deleted.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Period  string `yaml:"period"`
}

// MaxChecksOrDefault returns the configured per-(author,title) check cap,
// defaulting to 3.
func (c CheckConfig) MaxChecksOrDefault() int {
	if c.MaxChecks > 0 {
		return c.MaxChecks
	}
	return 3
}

// ThresholdOrDefault returns the similarity percentage above which a
// submission is flagged, defaulting to 30.
func (c CheckConfig) ThresholdOrDefault() float64 {
	if c.SimilarityThreshold > 0 {
		return c.SimilarityThreshold
	}
	return 30.0
}

// TimeoutOrDefault returns the gateway call timeout, defaulting to 5s.
func (c ChainConfig) TimeoutOrDefault() time.Duration {
	if d := c.Timeout.Duration(); d > 0 {
		return d
	}
	return 5 * time.Second
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly
// strings like "1MB" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*s = 0
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*s = SizeBytes(v)
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(i)
		return nil
	}
	return fmt.Errorf("invalid size value: %q", node.Value)
}

func (s SizeBytes) Int64() int64 { return int64(s) }

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "5s" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
