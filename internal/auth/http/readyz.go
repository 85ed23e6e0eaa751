package http

import (
	"net/http"
	"time"

	"github.com/loomandthread/storefront/internal/auth/revocation"
	"github.com/loomandthread/storefront/internal/auth/store"
	"github.com/loomandthread/storefront/pkg/httpx"
)

// ReadyzHandler is the readiness probe. Authentication fails closed when the
// revocation store is down, so a broken Redis makes the whole service not
// ready, not just degraded.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	rev revocation.Store,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &healthChecks{
			Database:   "ok",
			Revocation: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := rev.Ping(r.Context()); err != nil {
			checks.Revocation = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, healthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
