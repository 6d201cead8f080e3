package config

import (
	"errors"
	"os"
	"path"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces secret overrides, e.g. POSTBOARD_JWT_KEY.
const envPrefix = "POSTBOARD"

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpAddr               string        `yaml:"http_addr"`
	JwtTTL                 time.Duration `yaml:"jwt_ttl"`
	BcryptCost             int           `yaml:"bcrypt_cost"`
	LogLevel               string        `yaml:"log_level"`
	LogJSON                bool          `yaml:"log_json"`
	IsHTTPS                bool          `yaml:"is_https"`
	CorsAllowedOrigins     []string      `yaml:"cors_allowed_origins"`
	LoginRateLimit         int           `yaml:"login_rate_limit"` // requests per minute per IP on /login and /users
	DbConnectRetries       int           `yaml:"db_connect_retries"`
	DbConnectRetryInterval time.Duration `yaml:"db_connect_retry_interval"`
	PostsPageSize          int           `yaml:"posts_page_size"`
	MaxPostsPageSize       int           `yaml:"max_posts_page_size"`
	// UnifyLoginErrors answers both unknown email and wrong password with 401
	// "Invalid credentials" instead of 404/403.
	UnifyLoginErrors bool `yaml:"unify_login_errors"`
}

// Pg and Private are overridden from POSTBOARD_PG_HOST, POSTBOARD_JWT_KEY and so on.
// No envconfig name tags here: a tagged name is also looked up without the prefix.
type Pg struct {
	Host     string `yaml:"host" split_words:"true"`
	Port     int    `yaml:"port" split_words:"true"`
	User     string `yaml:"user" split_words:"true"`
	Password string `yaml:"password" split_words:"true"`
	Dbname   string `yaml:"dbname" split_words:"true"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" split_words:"true"`
	Pg     Pg     `yaml:"pg" split_words:"true"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// Defaults returns the public settings used when a key is missing from public.yaml.
func Defaults() Public {
	return Public{
		HttpAddr:               ":8080",
		JwtTTL:                 60 * time.Minute,
		BcryptCost:             10,
		LogLevel:               "info",
		LoginRateLimit:         10,
		DbConnectRetries:       5,
		DbConnectRetryInterval: 2 * time.Second,
		PostsPageSize:          10,
		MaxPostsPageSize:       100,
	}
}

// Validate reports configuration that would make the service unsafe to start.
func (c *Config) Validate() error {
	if c.Private.JwtKey == "" {
		return errors.New("jwt_key is empty: set it in private.yaml or " + envPrefix + "_JWT_KEY")
	}
	if c.Public.JwtTTL <= 0 {
		return errors.New("jwt_ttl must be positive")
	}
	if c.Public.PostsPageSize <= 0 || c.Public.MaxPostsPageSize < c.Public.PostsPageSize {
		return errors.New("posts_page_size must be positive and not exceed max_posts_page_size")
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, then applies
// POSTBOARD_* environment overrides to the private part. private.yaml is
// optional so secrets can come from the environment alone.
func MustLoad(configFolder string) *Config {
	public := Defaults()
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}
	if err := envconfig.Process(envPrefix, &private); err != nil {
		panic("can't read environment overrides: " + err.Error())
	}

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return cfg
}
