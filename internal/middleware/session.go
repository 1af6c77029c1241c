package middleware

import (
	"net/http"

	"booking-api/internal/session"
)

// Header names the upstream gateway sets after authenticating the caller.
// This service only consumes the identity; authentication itself happens
// elsewhere.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserName  = "X-User-Name"
	HeaderSessionID = "X-Session-ID"
)

// RequireSession rejects requests without a caller identity and threads an
// explicit session value through the request context.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			http.Error(w, `{"error":"missing caller identity"}`, http.StatusUnauthorized)
			return
		}

		sessionID := r.Header.Get(HeaderSessionID)
		if sessionID == "" {
			sessionID = userID
		}

		sess := session.Session{
			ID:       sessionID,
			UserID:   userID,
			UserName: r.Header.Get(HeaderUserName),
		}
		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}
