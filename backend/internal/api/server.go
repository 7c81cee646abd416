// Package api serves the graph view and its data over HTTP and websockets.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/state"
	"network-journal/backend/pkg/logger"
)

// DataSource is where snapshots come from and where note analyses go
type DataSource interface {
	FetchSnapshot(ctx context.Context) (*state.Snapshot, error)
	FetchPersonNetwork(ctx context.Context, personID string, depth int) (*state.Snapshot, error)
	Stats(ctx context.Context) (*graph.Stats, error)
	ApplyAnalysis(ctx context.Context, analysis *state.NoteAnalysis, ownerName string) (*graph.ApplyResult, error)

	Search(ctx context.Context, query string, limit int) ([]state.SnapshotNode, error)
	PersonDetails(ctx context.Context, personID string) (*graph.PersonDetails, error)
	Insights(ctx context.Context) (*graph.Insights, error)
	Paths(ctx context.Context, fromID, toID string, maxLength int) ([]graph.Path, error)
	Clusters(ctx context.Context) ([]graph.Cluster, error)
	Recommendations(ctx context.Context, personID string, limit int) ([]graph.Recommendation, error)
}

// NoteExtractor reads entities and relationships out of a free-form note
type NoteExtractor interface {
	Extract(ctx context.Context, note string) (*state.NoteAnalysis, error)
}

// Server wires HTTP handlers to the engine loop and the data source
type Server struct {
	loop      *engine.Loop
	source    DataSource
	extractor NoteExtractor
	owner     string
	log       *zap.Logger
}

// NewServer creates a server. source and extractor may be nil; the endpoints
// that need them then answer 503.
func NewServer(loop *engine.Loop, source DataSource, extractor NoteExtractor, owner string) *Server {
	return &Server{
		loop:      loop,
		source:    source,
		extractor: extractor,
		owner:     owner,
		log:       logger.Named("api"),
	}
}

// Router builds the gin engine with every route
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(s.log))
	router.Use(gin.Recovery())
	router.Use(cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", s.handleWebsocket)

	api := router.Group("/api")
	{
		data := api.Group("/graph")
		data.GET("/data", s.getGraphData)
		data.GET("/stats", s.getGraphStats)
		data.GET("/person/:id", s.getPersonNetwork)
		data.GET("/person/:id/details", s.getPersonDetails)
		data.GET("/search", s.getSearch)
		data.GET("/insights", s.getInsights)
		data.GET("/paths", s.getPaths)
		data.GET("/clusters", s.getClusters)
		data.GET("/recommendations/:id", s.getRecommendations)

		view := api.Group("/view")
		view.GET("/frame.png", s.getFrame)
		view.GET("/state", s.getViewState)
		view.PUT("/layout", s.putLayout)
		view.PUT("/visibility", s.putVisibility)
		view.PUT("/options", s.putOptions)
		view.PUT("/size", s.putSize)
		view.POST("/select", s.postSelect)
		view.DELETE("/select", s.deleteSelect)
		view.POST("/reload", s.postReload)
		view.POST("/focus/:id", s.postFocus)

		api.POST("/notes", s.postNote)
	}
	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
