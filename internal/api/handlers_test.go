package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sateihub/server/internal/database"
	"sateihub/server/internal/models"
	"sateihub/server/internal/queue"
	"sateihub/server/internal/valuation"
)

type emptySource struct{}

func (emptySource) Fetch(context.Context, string, int) ([]models.RawComparable, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *queue.SnapshotQueue) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)

	engine := valuation.NewEngine(valuation.Options{
		Live: emptySource{},
		Seed: func() int64 { return 1 },
	})

	q := queue.NewSnapshotQueue(10, logrus.New())
	router := gin.New()
	SetupRoutes(router, NewHandler(engine, db, q, logrus.New()))
	return router, q
}

func TestCreateValuation(t *testing.T) {
	router, q := newTestRouter(t)

	body, _ := json.Marshal(models.ValuationRequest{
		Address:  "東京都新宿区西新宿2丁目",
		AreaSqm:  70,
		AgeYears: 12,
		Purpose:  models.PurposeSale,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/valuations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.ValuationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.OriginSynthetic, result.DataOrigin)
	assert.Equal(t, "13", result.RegionCode)
	assert.Positive(t, result.PriceRangeLow)

	// snapshot was queued for best-effort persistence
	assert.Equal(t, 1, q.Len())
}

func TestCreateValuationRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"address":`},
		{"missing area", `{"address":"東京都新宿区","purpose":"sale"}`},
		{"unknown purpose", `{"address":"東京都新宿区","area_sqm":70,"purpose":"flip"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/valuations", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetRegions(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/regions", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var regions []regionEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &regions))
	require.Len(t, regions, 47)
	assert.Equal(t, "01", regions[0].Code)
	assert.Equal(t, "北海道", regions[0].Name)
	assert.Positive(t, regions[0].MinimumSampleSize)
}

func TestGetRecentValuations(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/valuations/recent?limit=5", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var records []models.ValuationRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Empty(t, records)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
