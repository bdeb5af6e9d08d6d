package server

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Response details, kept stable for clients that surface them.
const (
	detailLoginSucceeded     = "login succeeded"
	detailLogoutSucceeded    = "logout succeeded"
	detailRefreshed          = "token refreshed"
	detailInvalidCredentials = "no active account found with the given credentials"
	detailRefreshMissing     = "refresh token missing"
	detailRefreshInvalid     = "refresh token invalid or expired"
	detailTokenInvalid       = "given token not valid"
	detailNotAuthenticated   = "authentication credentials were not provided"
	detailBadRequest         = "malformed request body"
)

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &detail{Detail: message})
}
