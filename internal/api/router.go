package api

import (
	"net/http"

	"github.com/alexivanou/cityinfo-api/internal/auth"
	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/alexivanou/cityinfo-api/internal/service"
	"github.com/alexivanou/cityinfo-api/internal/stats"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the optional parts of the HTTP surface
type Options struct {
	Logger *zap.Logger
	// Stats is nil for stores without a SQL database
	Stats *stats.Collector
	// Tokens signs bearer tokens. Nil means a per-process random key.
	Tokens      *auth.TokenService
	Credentials auth.CredentialValidator
	RequireAuth bool
	FilesDir    string
	Metrics     *Metrics
	// AllowedOrigins enables CORS when non-empty
	AllowedOrigins []string
	RateLimiter    *rate.Limiter
}

const defaultTokenIssuer = "cityinfo-api"

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(service, logger)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.writeProblem(w, http.StatusNotFound, "Not Found", "", nil)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.writeProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "", nil)
	})

	router.Use(loggingMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.middleware)
		router.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}
	if opts.RateLimiter != nil {
		router.Use(rateLimitMiddleware(opts.RateLimiter, logger))
	}

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	tokens := opts.Tokens
	if tokens == nil {
		var err error
		tokens, err = auth.NewEphemeralTokenService(config.AuthConfig{
			Issuer:   defaultTokenIssuer,
			Audience: defaultTokenIssuer,
		})
		if err != nil {
			logger.Error("Token issuing unavailable", zap.Error(err))
		}
	}

	var protect []mux.MiddlewareFunc
	if opts.RequireAuth {
		protect = append(protect, bearerAuthMiddleware(tokens, logger))
	}

	// Authentication
	credentials := opts.Credentials
	if credentials == nil {
		credentials = auth.AnyCredentials{}
	}
	authHandler := NewAuthHandler(tokens, credentials, logger)
	authRouter := api.PathPrefix("/authentication").Subrouter()
	authRouter.Use(negotiationMiddleware(logger))
	authRouter.HandleFunc("/authenticate", authHandler.Authenticate).Methods("POST")

	// Cities
	cities := api.PathPrefix("/cities").Subrouter()
	cities.Use(negotiationMiddleware(logger))
	cities.HandleFunc("", handler.GetCities).Methods("GET")
	cities.HandleFunc("/{id:[0-9]+}", handler.GetCity).Methods("GET")

	// Points of interest
	pois := cities.PathPrefix("/{cityId:[0-9]+}/pointsofinterest").Subrouter()
	pois.Use(protect...)
	pois.HandleFunc("", handler.GetPointsOfInterest).Methods("GET")
	pois.HandleFunc("", handler.CreatePointOfInterest).Methods("POST")
	pois.HandleFunc("/{poiId:[0-9]+}", handler.GetPointOfInterest).Methods("GET")
	pois.HandleFunc("/{poiId:[0-9]+}", handler.UpdatePointOfInterest).Methods("PUT")
	pois.HandleFunc("/{poiId:[0-9]+}", handler.PatchPointOfInterest).Methods("PATCH")
	pois.HandleFunc("/{poiId:[0-9]+}", handler.DeletePointOfInterest).Methods("DELETE")

	// Files
	if opts.FilesDir != "" {
		filesHandler := NewFilesHandler(opts.FilesDir, logger)
		files := api.PathPrefix("/files").Subrouter()
		files.Use(protect...)
		files.HandleFunc("/{fileId:[0-9]+}", filesHandler.GetFile).Methods("GET")
	}

	// Statistics
	if opts.Stats != nil {
		statsHandler := NewStatsHandler(opts.Stats, logger)
		api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	}

	if len(opts.AllowedOrigins) == 0 {
		return router
	}
	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Location", "X-Pagination"},
	}).Handler(router)
}
