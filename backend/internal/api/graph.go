package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/graph"
	"network-journal/backend/internal/scene"
	"network-journal/backend/internal/state"
)

const defaultNetworkDepth = 2

func (s *Server) getGraphData(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	snap, err := s.source.FetchSnapshot(c.Request.Context())
	if err != nil {
		s.fail(c, "Failed to fetch graph data", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getGraphStats(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	stats, err := s.source.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, "Failed to fetch graph statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) getPersonNetwork(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	depth, err := depthParam(c)
	if err != nil {
		s.fail(c, "Invalid depth", err)
		return
	}
	snap, err := s.source.FetchPersonNetwork(c.Request.Context(), c.Param("id"), depth)
	if err != nil {
		s.fail(c, "Failed to fetch person network", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func depthParam(c *gin.Context) (int, error) {
	return intQuery(c, "depth", defaultNetworkDepth)
}

// postReload loads a fresh snapshot from the data source, or rebuilds the
// current one when there is no data source
func (s *Server) postReload(c *gin.Context) {
	ctx := c.Request.Context()

	var snap *state.Snapshot
	if s.source != nil {
		var err error
		if snap, err = s.source.FetchSnapshot(ctx); err != nil {
			s.fail(c, "Failed to fetch graph data", err)
			return
		}
	}

	var report scene.BuildReport
	err := s.loop.Do(ctx, func(e *engine.Engine) error {
		if snap != nil {
			e.Load(snap)
		} else {
			e.Reload()
		}
		report = e.Report()
		return nil
	})
	if err != nil {
		s.fail(c, "Failed to reload graph", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// postFocus narrows the view to a person's sub-network and selects them
func (s *Server) postFocus(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	depth, err := depthParam(c)
	if err != nil {
		s.fail(c, "Invalid depth", err)
		return
	}
	snap, err := s.source.FetchPersonNetwork(ctx, id, depth)
	if err != nil {
		s.fail(c, "Failed to fetch person network", err)
		return
	}

	var view engine.View
	err = s.loop.Do(ctx, func(e *engine.Engine) error {
		e.Load(snap)
		if err := e.Select(id); err != nil {
			return err
		}
		view = e.View()
		return nil
	})
	if err != nil {
		s.fail(c, "Failed to focus person", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type noteRequest struct {
	Text string `json:"text" binding:"required"`
}

type noteResponse struct {
	Analysis *state.NoteAnalysis `json:"analysis"`
	Applied  *graph.ApplyResult  `json:"applied"`
}

// postNote extracts a note, writes it to the graph and reloads the view
func (s *Server) postNote(c *gin.Context) {
	if s.extractor == nil {
		unavailable(c, errNoExtractor)
		return
	}
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	ctx := c.Request.Context()

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := s.extractor.Extract(ctx, req.Text)
	if err != nil {
		s.fail(c, "Failed to extract note", err)
		return
	}
	applied, err := s.source.ApplyAnalysis(ctx, analysis, s.owner)
	if err != nil {
		s.fail(c, "Failed to apply note analysis", err)
		return
	}

	snap, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		s.fail(c, "Failed to fetch graph data", err)
		return
	}
	if err := s.loop.Do(ctx, func(e *engine.Engine) error {
		e.Load(snap)
		return nil
	}); err != nil {
		s.fail(c, "Failed to reload graph", err)
		return
	}

	s.log.Info("Note processed",
		zap.Int("entities", len(applied.Entities)),
		zap.Int("relationships", len(applied.Relationships)),
	)
	c.JSON(http.StatusOK, noteResponse{Analysis: analysis, Applied: applied})
}
