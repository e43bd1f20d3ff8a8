// Package chi exposes the service over HTTP.
package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docdex-io/docdex/internal/metrics"
)

type Server struct {
	ingestor  Ingestor
	searcher  Searcher
	documents DocumentStore
	logger    *zap.Logger
}

func NewServer(ingestor Ingestor, searcher Searcher, documents DocumentStore, logger *zap.Logger) *Server {
	return &Server{
		ingestor:  ingestor,
		searcher:  searcher,
		documents: documents,
		logger:    logger,
	}
}

// Router assembles the HTTP surface. apiKeys enables bearer auth when
// non-empty; health and metrics stay open either way.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(JSONRecoverer(s.logger))
	r.Use(RequestLogger(s.logger))
	r.Use(metrics.Middleware())
	if len(apiKeys) > 0 {
		r.Use(BearerAuthMiddleware(apiKeys, "/health", "/metrics"))
	}

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/documents", s.handleIngest)
	r.Get("/documents/{doc_id}", s.handleGetDocument)
	r.Delete("/documents/{doc_id}", s.handleDeleteDocument)

	r.Post("/search", s.handleSemanticSearch)
	r.Post("/search/keyword", s.handleKeywordSearch)

	r.Get("/stats", s.handleStats)

	return r
}
