package cookiejwt

// Default endpoints of the cookie-JWT authentication server.
const (
	DefaultLoginEndpoint   = "/auth/login/"
	DefaultLogoutEndpoint  = "/auth/logout/"
	DefaultRefreshEndpoint = "/auth/refresh/"
	DefaultUserEndpoint    = "/auth/me/"
)

// DefaultLoginRoute is where the user is sent after an unrecoverable auth failure.
const DefaultLoginRoute = "/login"

const (
	// AccessCookieName is the default name of the short-lived access token cookie.
	AccessCookieName = "access_token"
	// RefreshCookieName is the default name of the long-lived refresh token cookie.
	RefreshCookieName = "refresh_token"
)

// RequestIDHeader carries the request descriptor id on every outbound request.
const RequestIDHeader = "X-Request-Id"

const jsonMime = "application/json"
