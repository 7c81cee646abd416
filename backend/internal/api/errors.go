package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "network-journal/backend/pkg/errors"
)

var errNoDataSource = errors.New("graph database is not configured")
var errNoExtractor = errors.New("note extraction is not configured")

// statusFor maps an application error onto an HTTP status
func statusFor(err error) int {
	var notFound *apperrors.ErrPersonNotFound
	var notInView *apperrors.ErrNodeNotFound
	var timeout *apperrors.ErrContextTimeout
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &notInView):
		return http.StatusNotFound
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case apperrors.IsErrorType(err, apperrors.ErrorTypeLayout),
		apperrors.IsErrorType(err, apperrors.ErrorTypeSnapshot):
		return http.StatusBadRequest
	case apperrors.IsErrorType(err, apperrors.ErrorTypeGraph),
		apperrors.IsErrorType(err, apperrors.ErrorTypeNotes):
		return http.StatusBadGateway
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func unavailable(c *gin.Context, err error) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
}
