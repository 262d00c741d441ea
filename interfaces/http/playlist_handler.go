package http

import (
	"net/http"
	"strconv"

	"nosbot/domain/dto"
	"nosbot/infrastructure/logger"
	"nosbot/usecase"

	"github.com/gin-gonic/gin"
)

type IPlaylistHandler interface {
	Generate(ctx *gin.Context)
	History(ctx *gin.Context)
}

type PlaylistHandler struct {
	playlistUsecase usecase.IPlaylistUsecase
}

func NewPlaylistHandler(playlistUsecase usecase.IPlaylistUsecase) IPlaylistHandler {
	return &PlaylistHandler{playlistUsecase: playlistUsecase}
}

func (h *PlaylistHandler) Generate(ctx *gin.Context) {
	var req dto.GeneratePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	caller := callerFromContext(ctx)
	resp, err := h.playlistUsecase.GeneratePlaylist(ctx.Request.Context(), &req, caller)
	if err != nil {
		logger.GetLogger().WithField("channel_id", req.ChannelID).Warn("playlist generation failed: ", err)
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *PlaylistHandler) History(ctx *gin.Context) {
	userID := ctx.GetString("user_id")
	if userID == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	items, err := h.playlistUsecase.History(ctx.Request.Context(), userID, limit)
	if err != nil {
		logger.GetLogger().WithField("user_id", userID).Warn("playlist history failed: ", err)
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"playlists": items})
}

// callerFromContext builds the generation identity. Anonymous callers are
// rate limited by client address.
func callerFromContext(ctx *gin.Context) usecase.Caller {
	caller := usecase.Caller{RateKey: ctx.ClientIP()}
	if userID := ctx.GetString("user_id"); userID != "" {
		caller.UserID = &userID
		caller.RateKey = userID
		caller.Pro = ctx.GetBool("pro")
	}
	return caller
}
