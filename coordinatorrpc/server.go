// Package coordinatorrpc is the HTTP façade (C6): a JSON POST/GET surface
// over the engine, modeled on the teacher's terse, no-framework handler
// style but routed with github.com/julienschmidt/httprouter.
package coordinatorrpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/miden-multisig/coordinator/engine"
)

// MetricsHandler is satisfied by *coordinatormonitor.Metrics. It is an
// interface here so coordinatorrpc never needs to import coordinatormonitor
// directly.
type MetricsHandler interface {
	Handler() http.Handler
}

// Config carries everything the HTTP façade needs to build its router.
type Config struct {
	NetworkID      string
	Engine         *engine.Engine
	AllowedOrigins []string

	// Metrics, if set, is mounted on /metrics behind the same CORS
	// policy as every other route.
	Metrics MetricsHandler
}

// Server wraps an Engine with the JSON route surface described in
// spec.md §6.
type Server struct {
	networkID string
	engine    *engine.Engine
	handler   http.Handler
}

// NewServer builds a Server and its routing table. The returned Server's
// Handler method is ready to pass to http.Server or httptest.NewServer.
func NewServer(cfg Config) *Server {
	s := &Server{networkID: cfg.NetworkID, engine: cfg.Engine}

	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.POST("/api/v1/multisig-account/create", s.handleCreateMultisigAccount)
	router.POST("/api/v1/multisig-tx/propose", s.handleProposeMultisigTx)
	router.POST("/api/v1/signature/add", s.handleAddSignature)
	router.POST("/api/v1/consumable-notes/list", s.handleListConsumableNotes)
	router.POST("/api/v1/multisig-account/details", s.handleGetMultisigAccountDetails)
	router.POST("/api/v1/multisig-account/approver/list", s.handleListMultisigApprovers)
	router.POST("/api/v1/multisig-tx/stats", s.handleGetMultisigTxStats)
	router.POST("/api/v1/multisig-tx/list", s.handleListMultisigTx)

	if cfg.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	s.handler = loggingMiddleware(corsMiddleware(cfg.AllowedOrigins, router))
	return s
}

// Handler returns the fully wrapped http.Handler (CORS + logging + routes).
func (s *Server) Handler() http.Handler {
	return s.handler
}
