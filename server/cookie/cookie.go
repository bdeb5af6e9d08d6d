package cookie

import (
	"net/http"
	"time"

	"github.com/viant/cookiejwt"
)

// Config defines attributes of the access and refresh cookies.
type Config struct {
	AccessName  string `yaml:"accessName" mapstructure:"accessName"`
	RefreshName string `yaml:"refreshName" mapstructure:"refreshName"`
	Path        string `yaml:"path" mapstructure:"path"`
	Domain      string `yaml:"domain" mapstructure:"domain"`
	// UseTopDomain sets Domain to the request's eTLD+1 when Domain is empty.
	UseTopDomain bool `yaml:"useTopDomain" mapstructure:"useTopDomain"`
	// Insecure drops the Secure attribute; development only.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// AllowScript drops the HttpOnly attribute.
	AllowScript bool          `yaml:"allowScript" mapstructure:"allowScript"`
	SameSite    string        `yaml:"sameSite" mapstructure:"sameSite"`
	AccessTTL   time.Duration `yaml:"accessTTL" mapstructure:"accessTTL"`
	RefreshTTL  time.Duration `yaml:"refreshTTL" mapstructure:"refreshTTL"`
}

// Init fills unset fields with defaults.
func (c *Config) Init() {
	if c.AccessName == "" {
		c.AccessName = cookiejwt.AccessCookieName
	}
	if c.RefreshName == "" {
		c.RefreshName = cookiejwt.RefreshCookieName
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.SameSite == "" {
		c.SameSite = "Lax"
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = 5 * time.Minute
	}
	if c.RefreshTTL == 0 {
		c.RefreshTTL = 24 * time.Hour
	}
}

// SetAccess writes the access cookie.
func (c *Config) SetAccess(w http.ResponseWriter, r *http.Request, value string) {
	http.SetCookie(w, c.cookie(r, c.AccessName, value, int(c.AccessTTL.Seconds())))
}

// SetRefresh writes the refresh cookie.
func (c *Config) SetRefresh(w http.ResponseWriter, r *http.Request, value string) {
	http.SetCookie(w, c.cookie(r, c.RefreshName, value, int(c.RefreshTTL.Seconds())))
}

// Clear expires both cookies.
func (c *Config) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, c.cookie(r, c.AccessName, "", -1))
	http.SetCookie(w, c.cookie(r, c.RefreshName, "", -1))
}

// Access returns the access cookie value of r.
func (c *Config) Access(r *http.Request) string {
	return value(r, c.AccessName)
}

// Refresh returns the refresh cookie value of r.
func (c *Config) Refresh(r *http.Request) string {
	return value(r, c.RefreshName)
}

func (c *Config) cookie(r *http.Request, name, value string, maxAge int) *http.Cookie {
	domain := c.Domain
	if domain == "" && c.UseTopDomain {
		if top, _ := TopDomain(ClientHost(r)); top != "" {
			domain = top
		}
	}
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.Path,
		Domain:   domain,
		MaxAge:   maxAge,
		Secure:   !c.Insecure,
		HttpOnly: !c.AllowScript,
		SameSite: sameSite(c.SameSite),
	}
	if ck.Path == "" {
		ck.Path = "/"
	}
	return ck
}

func value(r *http.Request, name string) string {
	if ck, err := r.Cookie(name); err == nil {
		return ck.Value
	}
	return ""
}

func sameSite(mode string) http.SameSite {
	switch mode {
	case "Strict", "strict":
		return http.SameSiteStrictMode
	case "None", "none":
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
