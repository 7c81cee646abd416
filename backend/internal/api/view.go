package api

import (
	"encoding/json"
	"image"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"network-journal/backend/internal/engine"
	"network-journal/backend/internal/render"
	"network-journal/backend/internal/scene"
)

func (s *Server) getFrame(c *gin.Context) {
	var img *image.RGBA
	err := s.loop.Do(c.Request.Context(), func(e *engine.Engine) error {
		img = e.CloneImage()
		return nil
	})
	if err != nil {
		s.fail(c, "Failed to capture frame", err)
		return
	}

	s.writeFrame(c, img)
}

// writeFrame encodes img before anything is written, so an encoding error
// still gets a JSON error response
func (s *Server) writeFrame(c *gin.Context, img image.Image) {
	data, err := render.PNG(img)
	if err != nil {
		s.fail(c, "Failed to encode frame", err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) getViewState(c *gin.Context) {
	s.respondView(c, func(*engine.Engine) error { return nil })
}

// respondView runs fn on the engine and answers with the resulting view
func (s *Server) respondView(c *gin.Context, fn func(*engine.Engine) error) {
	var view engine.View
	err := s.loop.Do(c.Request.Context(), func(e *engine.Engine) error {
		if err := fn(e); err != nil {
			return err
		}
		view = e.View()
		return nil
	})
	if err != nil {
		s.fail(c, "View request failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type layoutRequest struct {
	Layout string `json:"layout" binding:"required"`
}

func (s *Server) putLayout(c *gin.Context) {
	var req layoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, func(e *engine.Engine) error {
		return e.SetLayout(req.Layout)
	})
}

type visibilityRequest struct {
	Hidden []string `json:"hidden"`
}

func (s *Server) putVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, func(e *engine.Engine) error {
		e.SetVisibility(scene.Hide(req.Hidden...))
		return nil
	})
}

// putOptions applies a partial options object over the current options
func (s *Server) putOptions(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	s.respondView(c, func(e *engine.Engine) error {
		opts := e.Options()
		if err := json.Unmarshal(body, &opts); err != nil {
			return err
		}
		return e.SetOptions(opts)
	})
}

type sizeRequest struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

func (s *Server) putSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, func(e *engine.Engine) error {
		return e.Resize(req.Width, req.Height)
	})
}

type selectRequest struct {
	ID string `json:"id" binding:"required"`
}

func (s *Server) postSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondView(c, func(e *engine.Engine) error {
		return e.Select(req.ID)
	})
}

func (s *Server) deleteSelect(c *gin.Context) {
	s.respondView(c, func(e *engine.Engine) error {
		e.ClearSelection()
		return nil
	})
}
