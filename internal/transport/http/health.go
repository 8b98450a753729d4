package http

import (
	stdhttp "net/http"
)

// HealthHandler reports liveness only. It deliberately skips the database:
// the storefront probes it on a tight interval.
func HealthHandler(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
