package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// basicAuth guards a handler with the configured admin credentials. The
// expected hashes are computed once at wrap time; per-request comparisons
// are constant time over fixed-size digests.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	expectedUsername := sha256.Sum256([]byte(s.opts.BasicAuth.Username))
	expectedPassword := sha256.Sum256([]byte(s.opts.BasicAuth.Password))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok {
			usernameHash := sha256.Sum256([]byte(username))
			passwordHash := sha256.Sum256([]byte(password))

			usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsername[:]) == 1
			passwordMatch := subtle.ConstantTimeCompare(passwordHash[:], expectedPassword[:]) == 1

			if usernameMatch && passwordMatch {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="laudo", charset="UTF-8"`)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}
