package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sateihub/server/config"
	"sateihub/server/internal/database"
	"sateihub/server/internal/models"
	"sateihub/server/internal/queue"
	"sateihub/server/internal/valuation"
)

type Handler struct {
	engine *valuation.Engine
	db     *gorm.DB
	queue  *queue.SnapshotQueue
	logger *logrus.Logger
}

func NewHandler(engine *valuation.Engine, db *gorm.DB, q *queue.SnapshotQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		engine: engine,
		db:     db,
		queue:  q,
		logger: logger,
	}
}

// CreateValuation runs one valuation cycle and queues the snapshot.
func (h *Handler) CreateValuation(c *gin.Context) {
	var req models.ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("failed to bind valuation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Evaluate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, valuation.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("valuation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "valuation failed"})
		return
	}

	// Best-effort: a full or closed queue never affects the response.
	if h.queue != nil {
		record := models.NewValuationRecord(req, result)
		if err := h.queue.Push([]*models.ValuationRecord{record}); err != nil {
			h.logger.WithError(err).Warn("failed to queue valuation snapshot")
		}
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentValuations returns the newest persisted snapshots.
func (h *Handler) GetRecentValuations(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	records, err := database.GetRecentValuations(h.db, limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to get recent valuations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get recent valuations"})
		return
	}

	c.JSON(http.StatusOK, records)
}

type regionEntry struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	SearchRadiusKm    float64 `json:"search_radius_km"`
	LookbackMonths    int     `json:"lookback_months"`
	MinimumSampleSize int     `json:"minimum_sample_size"`
}

// GetRegions lists every prefecture with its effective search profile.
func (h *Handler) GetRegions(c *gin.Context) {
	regions := make([]regionEntry, 0, len(config.Prefectures))
	for _, p := range config.Prefectures {
		profile := config.ProfileFor(p.Code)
		regions = append(regions, regionEntry{
			Code:              p.Code,
			Name:              p.Name,
			SearchRadiusKm:    profile.SearchRadiusKm,
			LookbackMonths:    profile.LookbackMonths,
			MinimumSampleSize: profile.MinimumSampleSize,
		})
	}

	c.JSON(http.StatusOK, regions)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
