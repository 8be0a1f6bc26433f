package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dukerupert/shoplist/internal/backup"
	"github.com/dukerupert/shoplist/internal/handler"
	"github.com/dukerupert/shoplist/internal/metrics"
	"github.com/dukerupert/shoplist/internal/middleware"
	"github.com/dukerupert/shoplist/internal/session"
	ws "github.com/dukerupert/shoplist/internal/websocket"
)

// KeyLister reports which documents have been persisted so far.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

type Server struct {
	sess        *session.Session
	keys        KeyLister
	hub         *ws.Hub
	listH       *handler.ListHandler
	purchaseH   *handler.PurchaseHandler
	templateH   *handler.TemplateHandler
	categoryH   *handler.CategoryHandler
	backupH     *handler.BackupHandler
	collector   *metrics.Collector
	gatherer    prometheus.Gatherer
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(sess *session.Session, keys KeyLister, hub *ws.Hub, backupMgr *backup.Manager, collector *metrics.Collector, gatherer prometheus.Gatherer, limiter *middleware.RateLimiter, logger *slog.Logger) *Server {
	return &Server{
		sess:        sess,
		keys:        keys,
		hub:         hub,
		listH:       handler.NewListHandler(sess, logger),
		purchaseH:   handler.NewPurchaseHandler(sess, logger),
		templateH:   handler.NewTemplateHandler(sess, logger),
		categoryH:   handler.NewCategoryHandler(sess),
		backupH:     handler.NewBackupHandler(backupMgr, logger),
		collector:   collector,
		gatherer:    gatherer,
		rateLimiter: limiter,
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.gatherer))
	}

	s.registerAPIRoutes(mux)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	var observer middleware.RequestObserver
	if s.collector != nil {
		observer = s.collector
	}
	return middleware.RequestLogger(s.logger.With("component", "http"), observer)(mux)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Active list
	mux.HandleFunc("GET /api/list", s.listH.Get)
	mux.HandleFunc("PUT /api/list/type", s.listH.SetType)
	mux.HandleFunc("POST /api/list/uncheck-all", s.listH.UncheckAll)
	mux.HandleFunc("DELETE /api/list", s.listH.Clear)
	mux.HandleFunc("GET /api/list/export", s.listH.Export)
	mux.HandleFunc("POST /api/list/import", s.rateLimited(s.listH.Import))
	mux.HandleFunc("GET /api/list/suggest-category", s.listH.Suggest)

	// Items
	mux.HandleFunc("POST /api/items", s.listH.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", s.listH.UpdateItem)
	mux.HandleFunc("PUT /api/items/{id}/price", s.listH.UpdatePrice)
	mux.HandleFunc("PUT /api/items/{id}/category", s.listH.UpdateCategory)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.listH.ToggleItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.listH.DeleteItem)

	// Categories of the active list
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("PUT /api/categories", s.categoryH.Replace)
	mux.HandleFunc("POST /api/categories", s.categoryH.Add)
	mux.HandleFunc("POST /api/categories/move", s.categoryH.Move)
	mux.HandleFunc("DELETE /api/categories/{name}", s.categoryH.Remove)

	// Purchase history
	mux.HandleFunc("POST /api/purchases", s.purchaseH.Create)
	mux.HandleFunc("GET /api/purchases", s.purchaseH.List)
	mux.HandleFunc("GET /api/purchases/{id}", s.purchaseH.Get)
	mux.HandleFunc("GET /api/purchases/{id}/receipt", s.purchaseH.Receipt)

	// Templates
	mux.HandleFunc("GET /api/templates", s.templateH.List)
	mux.HandleFunc("POST /api/templates", s.templateH.Create)
	mux.HandleFunc("GET /api/templates/{id}", s.templateH.Get)
	mux.HandleFunc("PUT /api/templates/{id}", s.templateH.Update)
	mux.HandleFunc("DELETE /api/templates/{id}", s.templateH.Delete)
	mux.HandleFunc("POST /api/templates/{id}/load", s.templateH.Load)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("POST /api/backups", s.rateLimited(s.backupH.Create))
	mux.HandleFunc("POST /api/backups/{id}/restore", s.rateLimited(s.backupH.Restore))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := s.sess.Status()
	code := http.StatusOK
	if status != session.StatusReady {
		code = http.StatusServiceUnavailable
	}
	body := map[string]any{
		"status":  status.String(),
		"clients": s.hub.ClientCount(),
	}
	if s.keys != nil {
		keys, err := s.keys.Keys(r.Context())
		if err != nil {
			s.logger.Warn("health: list stored keys", "error", err)
			code = http.StatusServiceUnavailable
		} else {
			body["stored"] = keys
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	if s.rateLimiter == nil {
		return h
	}
	return middleware.RateLimit(s.rateLimiter)(h).ServeHTTP
}
