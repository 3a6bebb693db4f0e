package server

import (
	"Sigil/internal/config"
	"Sigil/internal/handlers"
	"Sigil/internal/logging"
	"Sigil/internal/middlewares"
	"fmt"
	"net/http"

	"github.com/The127/ioc"

	gh "github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "Sigil/docs"

	"github.com/gorilla/mux"
)

func Serve(dp *ioc.DependencyProvider, serverConfig config.ServerConfig) {
	r := mux.NewRouter()

	r.Use(middlewares.RecoverMiddleware())
	r.Use(middlewares.LoggingMiddleware())
	r.Use(middlewares.ScopeMiddleware(dp))

	r.HandleFunc("/health", handlers.ApplicationHealth).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/debug/vars", handlers.ExpvarVars).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/metrics", handlers.PrometheusMetrics).Methods(http.MethodGet, http.MethodOptions)

	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.Use(gh.CORS(
		gh.AllowedOrigins(serverConfig.AllowedOrigins),
		gh.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		gh.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gh.AllowCredentials(),
		gh.MaxAge(3600),
	))
	apiRouter.Use(middlewares.SessionMiddleware())

	apiRouter.HandleFunc("/passkeys/registrations", handlers.BeginPasskeyRegistration).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/passkeys/registrations/{ceremonyId}/complete", handlers.FinishPasskeyRegistration).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/passkeys/logins", handlers.BeginPasskeyLogin).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/passkeys/logins/{ceremonyId}/complete", handlers.FinishPasskeyLogin).Methods(http.MethodPost, http.MethodOptions)

	apiRouter.HandleFunc("/ceremonies/{ceremonyId}", handlers.GetCeremonyState).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/ceremonies/{ceremonyId}/fail", handlers.ReportCeremonyFailure).Methods(http.MethodPost, http.MethodOptions)

	apiRouter.HandleFunc("/users/{userId}/passkeys", handlers.ListPasskeys).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/users/{userId}/passkeys/{passkeyId}", handlers.RemovePasskey).Methods(http.MethodDelete, http.MethodOptions)
	apiRouter.HandleFunc("/users/{userId}/promote", handlers.PromoteProvisionalUser).Methods(http.MethodPost, http.MethodOptions)

	apiRouter.HandleFunc("/logout", handlers.Logout).Methods(http.MethodPost, http.MethodOptions)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	addr := fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port)
	logging.Logger.Infof("running server at %s", addr)
	srv := &http.Server{
		Handler: r,
		Addr:    addr,
	}

	go serve(srv)
}

func serve(srv *http.Server) {
	err := srv.ListenAndServe()
	if err != nil {
		panic(fmt.Errorf("error while running server: %w", err))
	}
}
