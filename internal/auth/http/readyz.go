package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/pkg/authsdk"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Probe
//	@Description	Checks the database, the session signer and, when shared, the attempt limiter.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signer jwtx.Signer,
	pingLimiter func(context.Context) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Database, err.Error())
		}

		if signer == nil {
			degrade(&checks.Signer, "no session secret loaded")
		}

		if pingLimiter != nil {
			checks.Limiter = "ok"
			if err := pingLimiter(r.Context()); err != nil {
				degrade(&checks.Limiter, err.Error())
			}
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
