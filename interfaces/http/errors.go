package http

import (
	"errors"
	"net/http"

	"nosbot/domain/model"

	"github.com/gin-gonic/gin"
)

// abortWithError maps domain errors to HTTP statuses. Anything unmapped is
// a 500 with a generic body so internals never leak.
func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrChannelNotFound), errors.Is(err, model.ErrVideoNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrIndexingIncomplete):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNoMatchingVideos):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrRateLimited):
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrUpstream):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNotConfigured):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
