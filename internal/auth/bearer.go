package auth

import (
	"net/http"
	"strings"
)

// BearerToken extracts the token from an Authorization header of the form
// "Bearer <token>". The scheme comparison is case-insensitive; the empty
// string means no usable token was present.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
