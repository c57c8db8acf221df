package server

import (
	"crypto/subtle"
	"net/http"
)

// AuditKeyHeader carries the access key for gated endpoints.
const AuditKeyHeader = "X-Audit-Key"

// requireKey rejects requests that do not present key via ?key= or the
// X-Audit-Key header. An empty configured key rejects everything.
func requireKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get("key")
			if got == "" {
				got = r.Header.Get(AuditKeyHeader)
			}
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid or missing audit key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
