package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorBadRequest),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorConflict):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the text shown to the client. Internal errors are
// never exposed.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return msgInternal
	}
	var de *common.DetailedError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": errorMessage(err, status)})
}
