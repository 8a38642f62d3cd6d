package middleware

import (
	"context"
	"net/http"
)

// UserHeader carries the acting user's identity, set by the authenticating
// reverse proxy in front of this service.
const UserHeader = "X-User-ID"

type contextKey string

const userKey contextKey = "user"

// Identity copies the acting user from the request header into the request
// context, so handlers pass an explicit identity into the coordinator
// instead of reading ambient state.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get(UserHeader); user != "" {
			r = r.WithContext(context.WithValue(r.Context(), userKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the acting user for the request, or "" when none was
// supplied.
func UserID(r *http.Request) string {
	if user, ok := r.Context().Value(userKey).(string); ok {
		return user
	}
	return ""
}
