//	@title			BTU Burial API
//	@version		1.0
//	@description	Backend for the BTU Burial society — membership, notices, surveys and news.
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/btu-burial/backend/internal/admin"
	"github.com/btu-burial/backend/internal/config"
	"github.com/btu-burial/backend/internal/db"
	"github.com/btu-burial/backend/internal/forms"
	appMiddleware "github.com/btu-burial/backend/internal/middleware"
	"github.com/btu-burial/backend/internal/news"
	"github.com/btu-burial/backend/internal/storage"

	_ "github.com/btu-burial/backend/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store := storage.New(cfg)

	// Warm the storage container off the request path. Failure is fine: the
	// first upload retries, and the feature degrades if the backend stays down.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := store.EnsureContainer(ctx); err != nil {
			log.Printf("storage container bootstrap deferred: %v", err)
		}
	}()

	// Wire dependencies: repository → service → handler
	newsRepo := news.NewRepository(pool)
	newsSvc := news.NewService(newsRepo, store)
	newsHandler := news.NewHandler(newsSvc, store)

	formsRepo := forms.NewRepository(pool)
	formsHandler := forms.NewHandler(formsRepo)
	triageHandler := forms.NewAdminHandler(formsRepo)

	adminRepo := admin.NewRepository(pool)
	adminSvc := admin.NewService(adminRepo, formsRepo, cfg)
	adminHandler := admin.NewHandler(adminSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"status":"Server running","db":"Disconnected"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"Server running","db":"Connected"}`))
	})

	// Swagger UI — available at http://localhost:3000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public form submissions, throttled hard: people submit these once.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Hour))
		r.Post("/api/membership/join", formsHandler.Join)
		r.Post("/api/funeral-notice", formsHandler.FuneralNotice)
		r.Post("/api/contact", formsHandler.Contact)
		r.Post("/api/survey", formsHandler.Survey)
		r.Post("/api/election-reg", formsHandler.ElectionReg)
	})

	// News feed and the image proxy.
	r.Get("/api/news", newsHandler.List)
	r.Post("/api/news", newsHandler.Create)
	r.Delete("/api/news/{id}", newsHandler.Delete)
	r.Get("/proxy-image/{token}", newsHandler.ProxyImage)

	// Admin surface.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, 15*time.Minute))

		r.Post("/login", adminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAdmin(cfg.JWTSecret))
			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/survey_analysis", adminHandler.SurveyAnalysis)
			r.Get("/{form}", triageHandler.List)
			r.Patch("/{form}/{id}/read", triageHandler.MarkRead)
			r.Patch("/{form}/{id}/reply", triageHandler.Reply)
			r.Delete("/{form}/{id}", triageHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s, storage=%s)", cfg.Port, cfg.AppEnv, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
