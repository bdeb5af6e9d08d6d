package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/viant/cookiejwt/server"
)

// EnvPrefix prefixes environment overrides, e.g. COOKIEJWT_SECRET or COOKIEJWT_REDIS_ADDR.
const EnvPrefix = "COOKIEJWT"

// ErrSecretRequired is returned when no signing secret is configured.
var ErrSecretRequired = errors.New("config: secret is required")

// Redis selects the Redis refresh grant store when Addr is set.
type Redis struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// User is a seeded account.
type User struct {
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
	Email     string `yaml:"email" mapstructure:"email"`
	FirstName string `yaml:"firstName" mapstructure:"firstName"`
	LastName  string `yaml:"lastName" mapstructure:"lastName"`
}

// Config is the reference server configuration.
type Config struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	LogLevel string `yaml:"logLevel" mapstructure:"logLevel"`
	Secret   string `yaml:"secret" mapstructure:"secret"`
	Issuer   string `yaml:"issuer" mapstructure:"issuer"`

	AccessTTL   time.Duration `yaml:"accessTTL" mapstructure:"accessTTL"`
	RefreshTTL  time.Duration `yaml:"refreshTTL" mapstructure:"refreshTTL"`
	GrantIdle   time.Duration `yaml:"grantIdle" mapstructure:"grantIdle"`
	RotateGrace time.Duration `yaml:"rotateGrace" mapstructure:"rotateGrace"`
	BcryptCost  int           `yaml:"bcryptCost" mapstructure:"bcryptCost"`

	Redis  Redis         `yaml:"redis" mapstructure:"redis"`
	Server server.Config `yaml:"server" mapstructure:"server"`
	Users  []User        `yaml:"users" mapstructure:"users"`
}

// User converts a seeded account to a server user.
func (u *User) User() server.User {
	return server.User{Username: u.Username, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrSecretRequired
	}
	for i, user := range c.Users {
		if user.Username == "" || user.Password == "" {
			return fmt.Errorf("config: users[%d] requires username and password", i)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("logLevel", "info")
	v.SetDefault("secret", "")
	v.SetDefault("issuer", "cookiejwt")
	v.SetDefault("accessTTL", 5*time.Minute)
	v.SetDefault("refreshTTL", 24*time.Hour)
	v.SetDefault("grantIdle", 24*time.Hour)
	v.SetDefault("rotateGrace", 0)
	v.SetDefault("bcryptCost", 0)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "cookiejwt:")
	v.SetDefault("server.refreshThreshold", time.Minute)
	v.SetDefault("server.rotateRefresh", false)
	v.SetDefault("server.cookies.domain", "")
	v.SetDefault("server.cookies.useTopDomain", false)
	v.SetDefault("server.cookies.insecure", false)
	v.SetDefault("server.cookies.sameSite", "Lax")
}

// Load reads the yaml file at path (optional) and applies COOKIEJWT_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %v: %w", path, err)
		}
	}
	ret := &Config{}
	if err := v.Unmarshal(ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ret.Server.Cookies.AccessTTL = ret.AccessTTL
	ret.Server.Cookies.RefreshTTL = ret.RefreshTTL
	ret.Server.Init()
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
