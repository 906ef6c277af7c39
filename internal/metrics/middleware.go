package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// InstrumentRoutes records request counts and latency for the scraper's
// side-channel listener. Latency is labeled by chi route pattern so path
// parameters do not explode series cardinality.
func InstrumentRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			// handler wrote nothing; net/http answers 200
			status = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, routeLabel(r), status, time.Since(started))
	})
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
