package server

import (
	"net/http"
	"time"

	"chaintrack/internal/inventory"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(inventoryCtrl *inventory.Controller, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1/records", func(r chi.Router) {
		r.Post("/", inventoryCtrl.HandleCreate)
		r.Get("/available", inventoryCtrl.HandleAvailable)
		r.Get("/owned", inventoryCtrl.HandleOwned)
		r.Get("/search", inventoryCtrl.HandleSearch)
		r.Get("/stats", inventoryCtrl.HandleStats)

		r.Route("/{productId}", func(r chi.Router) {
			r.Patch("/", inventoryCtrl.HandleEdit)
			r.Delete("/", inventoryCtrl.HandleDelete)
			r.Get("/history", inventoryCtrl.HandleHistory)
			r.Post("/save", inventoryCtrl.HandleSave)
			r.Post("/approve", inventoryCtrl.HandleApprove)
			r.Post("/allocate", inventoryCtrl.HandleAllocate)
			r.Post("/confirm-delivery", inventoryCtrl.HandleConfirmDelivery)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
