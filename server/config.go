package server

import (
	"time"

	"github.com/viant/cookiejwt"
	"github.com/viant/cookiejwt/server/cookie"
)

// Config defines the endpoints and cookie behaviour of the auth handler.
type Config struct {
	LoginEndpoint   string `yaml:"loginEndpoint" mapstructure:"loginEndpoint"`
	LogoutEndpoint  string `yaml:"logoutEndpoint" mapstructure:"logoutEndpoint"`
	RefreshEndpoint string `yaml:"refreshEndpoint" mapstructure:"refreshEndpoint"`
	UserEndpoint    string `yaml:"userEndpoint" mapstructure:"userEndpoint"`

	// RefreshThreshold renews the access cookie on any request when it expires within this window.
	RefreshThreshold time.Duration `yaml:"refreshThreshold" mapstructure:"refreshThreshold"`
	// RotateRefresh issues a new refresh token (same grant family) on every refresh.
	RotateRefresh bool `yaml:"rotateRefresh" mapstructure:"rotateRefresh"`

	Cookies cookie.Config `yaml:"cookies" mapstructure:"cookies"`
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	if c.LoginEndpoint == "" {
		c.LoginEndpoint = cookiejwt.DefaultLoginEndpoint
	}
	if c.LogoutEndpoint == "" {
		c.LogoutEndpoint = cookiejwt.DefaultLogoutEndpoint
	}
	if c.RefreshEndpoint == "" {
		c.RefreshEndpoint = cookiejwt.DefaultRefreshEndpoint
	}
	if c.UserEndpoint == "" {
		c.UserEndpoint = cookiejwt.DefaultUserEndpoint
	}
	if c.RefreshThreshold == 0 {
		c.RefreshThreshold = 60 * time.Second
	}
	c.Cookies.Init()
}
