// Package rest provides functionality for initializing a server for the
// link shortening service.
package rest

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/api/rest/handlers"
	"github.com/localan/shortener/internal/api/rest/middleware"
	"github.com/localan/shortener/internal/config"
	linker "github.com/localan/shortener/internal/service/linker/v1"
	reconciler "github.com/localan/shortener/internal/service/reconciler/v1"
	resolver "github.com/localan/shortener/internal/service/resolver/v1"
	trigger "github.com/localan/shortener/internal/service/trigger/v1"
	"github.com/localan/shortener/internal/storage"
)

var (
	serverStart = time.Now()
)

// uptime returns time in seconds since the server start-up.
func uptime() interface{} {
	return int64(time.Since(serverStart).Seconds())
}

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, linkStorage storage.LinkStorage, log *zap.Logger) (server *http.Server, err error) {
	linkerService, err := linker.InitLinker(linkStorage, log)
	if err != nil {
		return nil, err
	}
	resolverService, err := resolver.InitResolver(linkStorage, cfg.SyncConfig.FallbackPath, log)
	if err != nil {
		return nil, err
	}
	reconcilerService, err := reconciler.InitReconciler(linkStorage, cfg.SyncConfig, log)
	if err != nil {
		return nil, err
	}
	notifier := trigger.InitTrigger(cfg.TriggerConfig, log)
	authenticator := middleware.NewAuthenticator(cfg.SecretConfig)
	linkHandler, err := handlers.InitLinkHandler(linkerService, resolverService, reconcilerService, notifier, authenticator, cfg, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.Gzip)

	r.Get("/api/links", linkHandler.HandleListLinks())
	r.Post("/api/links", linkHandler.HandleCreateLink())
	r.Post("/api/admin/auth", linkHandler.HandleAdminAuth())
	r.Get("/api/sync", linkHandler.HandleSyncPreview())
	r.Post("/api/sync", linkHandler.HandleSync())
	r.Get("/api/debug", linkHandler.HandleDebug())
	r.Get("/ping", linkHandler.HandlePingDB())

	r.Group(func(r chi.Router) {
		r.Use(authenticator.RequireAdmin)
		r.Put("/api/links/{linkID}", linkHandler.HandleUpdateLink())
		r.Delete("/api/links/{linkID}", linkHandler.HandleDeleteLink())
		r.Get("/api/admin/links", linkHandler.HandleAdminListLinks())
		r.Post("/api/admin/links", linkHandler.HandleCreateLink())
		r.Patch("/api/admin/links", linkHandler.HandleLifecycleAction())
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", chiMiddleware.Profiler()) // see https://github.com/go-chi/chi/blob/master/middleware/profiler.go
	expvar.Publish("system.uptime", expvar.Func(uptime))

	// anything unmatched is a candidate short link
	r.NotFound(linkHandler.HandleRedirect())

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}
