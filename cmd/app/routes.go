package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ratehistory/internal/api"
	"ratehistory/internal/api/middleware"
	"ratehistory/internal/service"
)

func (app *App) initHTTP(rateService service.RateServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/currency", func(r chi.Router) {
		r.Get("/", api.HandleListCurrencies(rateService, app.logger))
		r.Post("/", api.HandleCreateRate(rateService))
		r.Post("/batch", api.HandleEnqueueBatch(rateService, app.cfg.Server.MaxBatchSize))
		r.Get("/{from}/{to}/", api.HandleGetRate(rateService))
	})
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(app.rateRepo, app.rdbCache, app.rdbAsynq))

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}
	if app.asynqmon != nil {
		r.Handle(app.asynqmon.RootPath()+"/*", app.asynqmon)
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
