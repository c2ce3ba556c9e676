package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/voxauth/api/auth" // Swagger docs
	"github.com/aussiebroadwan/voxauth/internal/auth/service"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/pkg/httpx"
	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	signer       jwtx.Signer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService

	// MaxUploadBytes caps audio uploads; defaults to service.DefaultMaxSampleBytes.
	MaxUploadBytes int64

	// PingLimiter is reported by /readyz when the attempt limiter is shared.
	PingLimiter func(context.Context) error

	// Limits are the per-route HTTP throttles; defaults to httpx.DefaultLimits.
	Limits httpx.Limits
}

func NewRouter(
	sessions *service.SessionService,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     sessions.Verifier,
		signer:       sessions.Signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       httpx.DefaultLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.MaxUploadBytes <= 0 {
		r.MaxUploadBytes = service.DefaultMaxSampleBytes
	}

	r.registerSignup()
	r.registerEnrollment()
	r.registerSessions()
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Voxauth Identity Service API
//	@version		0.1.0
//	@description	Account signup with email verification, optional biometric and voice enrollment, and password or voice login.
//	@description
//	@description				Session tokens are HS256 JWTs valid for one hour. There is no refresh; log in again once expired.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/voxauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSignup() {
	// POST /signup - moderate limit by IP (each call sends an email)
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(&SignupHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	// POST /verify - strict limit by IP; the service also caps attempts per key
	r.Mux.Handle("POST /v1/verify",
		httpx.Chain(&VerifyHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	r.Mux.Handle("POST /v1/verify/resend",
		httpx.Chain(&ResendHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerEnrollment() {
	// A session is optional: without one the body must carry a correlation key.
	r.Mux.Handle("POST /v1/enroll/biometric",
		httpx.Chain(&BiometricHandler{AccountService: r.AccountService},
			httpx.OptionalAuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(r.Limits.Moderate),
		),
	)

	r.Mux.Handle("POST /v1/enroll/voice",
		httpx.Chain(&VoiceEnrollHandler{AccountService: r.AccountService, MaxUploadBytes: r.MaxUploadBytes},
			httpx.OptionalAuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerSessions() {
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(&LoginHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	// Voice login is limited per target account as well as per IP, so one
	// account can't be hammered from many addresses.
	r.Mux.Handle("POST /v1/accounts/{id}/voice-login",
		httpx.Chain(&VoiceLoginHandler{AccountService: r.AccountService, MaxUploadBytes: r.MaxUploadBytes},
			httpx.RateLimitByIP(r.Limits.Strict),
			httpx.RateLimitByPathValue(r.Limits.Strict, "id"),
		),
	)
}

func (r *Router) registerAccounts() {
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(&ProfileHandler{AccountService: r.AccountService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(r.Limits.Public),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - public limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer, r.PingLimiter),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}
