// Package api assembles the service router.
package api

import (
	"net/http"

	"paperguard/pkg/api/handlers"
	"paperguard/pkg/check"
	"paperguard/pkg/quota"

	"github.com/gorilla/mux"
)

// Handler builds the router with all paper store and plagiarism check
// routes. maxContentBytes caps write payload content; zero disables the
// cap.
func Handler(c *check.Checker, l *quota.Limiter, maxContentBytes int64) http.Handler {
	r := mux.NewRouter()
	handlers.RegisterPapers(r, maxContentBytes)
	handlers.RegisterChecks(r, c, l)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	return r
}
