package cookie

import (
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ClientHost returns the browser-visible host, considering proxies.
// It looks at Forwarded, X-Forwarded-Host, then falls back to r.Host.
func ClientHost(r *http.Request) string {
	if r == nil {
		return ""
	}
	if fwd := r.Header.Get("Forwarded"); fwd != "" {
		for _, p := range strings.Split(strings.Split(fwd, ",")[0], ";") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(strings.ToLower(p), "host=") {
				if v := strings.Trim(p[len("host="):], "\""); v != "" {
					return stripPort(v)
				}
			}
		}
	}
	if xfh := r.Header.Get("X-Forwarded-Host"); xfh != "" {
		if v := strings.TrimSpace(strings.Split(xfh, ",")[0]); v != "" {
			return stripPort(v)
		}
	}
	return stripPort(r.Host)
}

// TopDomain returns eTLD+1 for a host (e.g., app.example.co.uk -> example.co.uk).
// IPs, localhost and public suffixes yield an empty domain (host-only cookie).
func TopDomain(host string) (string, error) {
	host = stripPort(host)
	if host == "" || isIP(host) || isLocalhost(host) {
		return "", nil
	}
	e, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", err
	}
	if e == "" {
		return "", nil
	}
	return e, nil
}

func isIP(h string) bool { return net.ParseIP(h) != nil }

func isLocalhost(h string) bool {
	h = strings.ToLower(h)
	return h == "localhost" || strings.HasSuffix(h, ".localhost")
}

func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}
