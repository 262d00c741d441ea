package http

import (
	"errors"
	"net/http"
	"time"

	"nosbot/domain/dto"
	"nosbot/domain/model"
	"nosbot/domain/repository"
	"nosbot/infrastructure/logger"
	"nosbot/usecase"

	"github.com/gin-gonic/gin"
)

type IChannelHandler interface {
	Lookup(ctx *gin.Context)
	Search(ctx *gin.Context)
	StartIndexing(ctx *gin.Context)
	IndexingStatus(ctx *gin.Context)
	QuotaUsage(ctx *gin.Context)
}

type ChannelHandler struct {
	channelUsecase usecase.IChannelUsecase
	indexerUsecase usecase.IIndexerUsecase
	quotaLog       repository.IQuotaLog
}

func NewChannelHandler(channelUsecase usecase.IChannelUsecase, indexerUsecase usecase.IIndexerUsecase, quotaLog repository.IQuotaLog) IChannelHandler {
	return &ChannelHandler{channelUsecase: channelUsecase, indexerUsecase: indexerUsecase, quotaLog: quotaLog}
}

func (h *ChannelHandler) Lookup(ctx *gin.Context) {
	query := ctx.Query("q")
	resp, err := h.channelUsecase.LookupChannel(ctx.Request.Context(), query)
	if err != nil {
		logger.GetLogger().WithField("query", query).Warn("channel lookup failed: ", err)
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *ChannelHandler) Search(ctx *gin.Context) {
	query := ctx.Query("q")
	results, err := h.channelUsecase.SearchChannels(ctx.Request.Context(), query)
	if err != nil {
		if errors.Is(err, model.ErrUpstream) {
			logger.GetLogger().WithField("query", query).Warn("channel search degraded: ", err)
			ctx.JSON(http.StatusOK, gin.H{"results": []dto.ChannelSearchResult{}})
			return
		}
		logger.GetLogger().WithField("query", query).Warn("channel search failed: ", err)
		abortWithError(ctx, err)
		return
	}
	if results == nil {
		results = []dto.ChannelSearchResult{}
	}
	ctx.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *ChannelHandler) StartIndexing(ctx *gin.Context) {
	channelID := ctx.Param("channelId")
	resp, err := h.indexerUsecase.StartIndexing(ctx.Request.Context(), channelID)
	if err != nil {
		logger.GetLogger().WithField("channel_id", channelID).Warn("start indexing failed: ", err)
		abortWithError(ctx, err)
		return
	}

	status := http.StatusAccepted
	if resp.Status != "started" {
		status = http.StatusOK
	}
	ctx.JSON(status, resp)
}

// QuotaUsage reports upstream API units spent since the last daily reset
// (midnight UTC).
func (h *ChannelHandler) QuotaUsage(ctx *gin.Context) {
	now := time.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	units, err := h.quotaLog.UsageSince(ctx.Request.Context(), since)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"units_used": units,
		"since":      since.Format(time.RFC3339),
	})
}

func (h *ChannelHandler) IndexingStatus(ctx *gin.Context) {
	channelID := ctx.Param("channelId")
	resp, err := h.indexerUsecase.GetIndexingStatus(ctx.Request.Context(), channelID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
