package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Neo4j  Neo4jConfig  `mapstructure:"neo4j" yaml:"neo4j"`
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StoreConfig selects the record store backend: "neo4j" or "sqlite".
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
}

// Neo4jConfig holds the Neo4j connection settings. An empty Database
// uses the server's default database.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// SQLiteConfig locates the SQLite database file. A leading ~ is
// expanded to the home directory.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LLMConfig configures the chat-completions backend used for subtask
// suggestions. An empty APIKey leaves suggestions disabled.
type LLMConfig struct {
	APIKey    string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Model     string        `mapstructure:"model" yaml:"model"`
	MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Proxy     string        `mapstructure:"proxy" yaml:"proxy"`
}

// AuthConfig holds the bearer token signing secret and lifetime.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// LogConfig sets the log level and an optional JSON log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

const (
	DriverNeo4j  = "neo4j"
	DriverSQLite = "sqlite"
)

const envPrefix = "TASKMGR"

// well-known variables accepted in addition to the TASKMGR_ prefixed ones
var envAliases = map[string]string{
	"llm.api_key":    "OPENAI_API_KEY",
	"neo4j.uri":      "NEO4J_URI",
	"neo4j.username": "NEO4J_USERNAME",
	"neo4j.password": "NEO4J_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.driver", DriverNeo4j)
	v.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "")
	v.SetDefault("sqlite.path", "~/.taskmanager/tasks.db")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.proxy", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads configuration from defaults, the optional YAML file at path
// and the environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings needed to start serving. A missing LLM key is
// not an error here: the suggestion endpoint reports it per request.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverNeo4j, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Neo4j.Password = mask(c.Neo4j.Password)
	c.LLM.APIKey = mask(c.LLM.APIKey)
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	return c
}
