package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"network-journal/backend/internal/constants"
	apperrors "network-journal/backend/pkg/errors"
)

func (s *Server) getPersonDetails(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	details, err := s.source.PersonDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Failed to fetch person details", err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) getSearch(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	limit, err := intQuery(c, "limit", constants.DefaultSearchLimit)
	if err != nil {
		s.fail(c, "Invalid limit", err)
		return
	}
	query := c.Query("q")
	nodes, err := s.source.Search(c.Request.Context(), query, limit)
	if err != nil {
		s.fail(c, "Failed to search network", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": nodes, "count": len(nodes)})
}

func (s *Server) getInsights(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	insights, err := s.source.Insights(c.Request.Context())
	if err != nil {
		s.fail(c, "Failed to fetch network insights", err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (s *Server) getPaths(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	maxLength, err := intQuery(c, "max_length", constants.DefaultPathLength)
	if err != nil {
		s.fail(c, "Invalid max_length", err)
		return
	}
	from, to := c.Query("from"), c.Query("to")
	paths, err := s.source.Paths(c.Request.Context(), from, to, maxLength)
	if err != nil {
		s.fail(c, "Failed to find network paths", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "paths": paths, "count": len(paths)})
}

func (s *Server) getClusters(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	clusters, err := s.source.Clusters(c.Request.Context())
	if err != nil {
		s.fail(c, "Failed to compute network clusters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusters": clusters, "count": len(clusters)})
}

func (s *Server) getRecommendations(c *gin.Context) {
	if s.source == nil {
		unavailable(c, errNoDataSource)
		return
	}
	limit, err := intQuery(c, "limit", constants.DefaultRecommendationLimit)
	if err != nil {
		s.fail(c, "Invalid limit", err)
		return
	}
	recs, err := s.source.Recommendations(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.fail(c, "Failed to fetch recommendations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"person_id": c.Param("id"), "recommendations": recs, "count": len(recs)})
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.DefaultQuery(key, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewInvalidOption(key, raw)
	}
	return v, nil
}
