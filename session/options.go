package session

import (
	"time"

	"github.com/viant/cookiejwt"
)

// Options exposes configurable attributes of a session service.
type Options struct {
	// BaseURL of the authentication API (required), e.g. https://api.example.com
	BaseURL string `json:"baseURL" yaml:"baseURL" mapstructure:"baseURL"`

	LoginEndpoint   string `json:"loginEndpoint,omitempty" yaml:"loginEndpoint,omitempty" mapstructure:"loginEndpoint"`
	LogoutEndpoint  string `json:"logoutEndpoint,omitempty" yaml:"logoutEndpoint,omitempty" mapstructure:"logoutEndpoint"`
	RefreshEndpoint string `json:"refreshEndpoint,omitempty" yaml:"refreshEndpoint,omitempty" mapstructure:"refreshEndpoint"`
	UserEndpoint    string `json:"userEndpoint,omitempty" yaml:"userEndpoint,omitempty" mapstructure:"userEndpoint"`

	// LoginRoute is where the navigator is sent after logout or an unrecoverable 401.
	LoginRoute string `json:"loginRoute,omitempty" yaml:"loginRoute,omitempty" mapstructure:"loginRoute"`

	// RenewTimeout bounds a single renewal call; zero disables the bound.
	RenewTimeout time.Duration `json:"renewTimeout,omitempty" yaml:"renewTimeout,omitempty" mapstructure:"renewTimeout"`
	// MaxPending caps requests parked behind one renewal; zero means unbounded.
	MaxPending int `json:"maxPending,omitempty" yaml:"maxPending,omitempty" mapstructure:"maxPending"`
}

// Init fills unset fields with defaults.
func (o *Options) Init() {
	if o.LoginEndpoint == "" {
		o.LoginEndpoint = cookiejwt.DefaultLoginEndpoint
	}
	if o.LogoutEndpoint == "" {
		o.LogoutEndpoint = cookiejwt.DefaultLogoutEndpoint
	}
	if o.RefreshEndpoint == "" {
		o.RefreshEndpoint = cookiejwt.DefaultRefreshEndpoint
	}
	if o.UserEndpoint == "" {
		o.UserEndpoint = cookiejwt.DefaultUserEndpoint
	}
	if o.LoginRoute == "" {
		o.LoginRoute = cookiejwt.DefaultLoginRoute
	}
}

// Validate checks required fields.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return cookiejwt.ErrBaseURLRequired
	}
	return nil
}
