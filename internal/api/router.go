package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/middleware"
	"github.com/campusgraph/socialgraph/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log           *logrus.Logger
	DB            HealthChecker
	Counter       GraphCounter
	Graph         GraphService
	Relationships RelationshipService
	Hub           *ws.Hub // optional; enables the event stream route
	CORSOrigins   []string
	Version       string
}

// maxBodySize caps request bodies; relationship payloads are small.
const maxBodySize = 1 << 20

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.AccessLog(deps.Log))
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	health := NewHealthHandler(deps.DB, deps.Counter, deps.Log, deps.Version)
	graph := NewGraphHandler(deps.Graph, deps.Log)
	rels := NewRelationshipHandler(deps.Relationships, deps.Log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Traversal and analytics.
	api.GET("/graph/traverse/:id", graph.Traverse)
	api.GET("/graph/mutual/:a/:b", graph.Mutual)
	api.GET("/graph/suggestions/:id", graph.Suggestions)
	api.GET("/graph/metrics/:id", graph.Metrics)
	api.GET("/graph/communities/:id", graph.Communities)
	api.GET("/graph/influential/:id", graph.Influential)
	api.GET("/graph/path/:from/:to", graph.Path)
	api.GET("/graph/export/:id", graph.Export)

	// Relationships.
	api.POST("/relationships", rels.Create)
	api.POST("/relationships/:id/recalculate", rels.Recalculate)
	api.PATCH("/relationships/:id/status", rels.UpdateStatus)

	if deps.Hub != nil {
		api.GET("/graph/stream/:id", streamHandler(deps.Log, deps.Hub, deps.CORSOrigins))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(r.Group("/api/v1"), deps)

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})

	return r
}
