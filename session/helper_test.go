package session

import "github.com/viant/cookiejwt/server/cookie"

func cookieConfigForTests() cookie.Config {
	return cookie.Config{Insecure: true}
}
