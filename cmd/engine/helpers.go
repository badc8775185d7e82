package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"jobscout-engine/internal/httpapi"
)

const (
	shutdownTokenHeader = "X-Shutdown-Token"
	shutdownGrace       = 5 * time.Second
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler stops srv on an authenticated POST from loopback.
// The reply is written before Shutdown starts, since Shutdown blocks until this handler returns.
func shutdownHandler(token string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method != http.MethodPost:
			httpapi.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
			return
		case !httpapi.IsLoopback(r):
			httpapi.WriteError(w, r, http.StatusForbidden, "forbidden", "local requests only")
			return
		case !tokenMatches(r.Header.Get(shutdownTokenHeader), token):
			httpapi.WriteError(w, r, http.StatusUnauthorized, "bad_token", "missing or wrong "+shutdownTokenHeader)
			return
		}

		log.Printf("[serve] shutdown requested rid=%s", httpapi.RequestIDFrom(r.Context()))
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "shutting_down"})

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("[serve] shutdown: %v", err)
			}
		}()
	}
}

func tokenMatches(got, want string) bool {
	return got != "" && want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
