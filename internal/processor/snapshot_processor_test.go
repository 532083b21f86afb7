package processor

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"sateihub/server/config"
	"sateihub/server/internal/models"
	"sateihub/server/internal/queue"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.MaxRetries = 2
	cfg.BatchProcessing.ProcessorCount = 1
	return cfg
}

func testBatch() []*models.ValuationRecord {
	return []*models.ValuationRecord{
		{ID: "a", Address: "東京都新宿区", RegionCode: "13"},
		{ID: "b", Address: "大阪府大阪市", RegionCode: "27"},
	}
}

func TestProcessBatchSuccess(t *testing.T) {
	db := &mockDB{}
	q := queue.NewSnapshotQueue(10, logrus.New())
	p := NewSnapshotProcessor(db, q, testConfig(), logrus.New())

	db.On("Transaction", mock.Anything).Return(nil).Once()

	assert.NoError(t, p.processBatch(testBatch()))
	db.AssertExpectations(t)
}

func TestProcessBatchRetriesThenSucceeds(t *testing.T) {
	db := &mockDB{}
	q := queue.NewSnapshotQueue(10, logrus.New())
	p := NewSnapshotProcessor(db, q, testConfig(), logrus.New())
	p.retryInterval = time.Millisecond

	db.On("Transaction", mock.Anything).Return(errors.New("locked")).Once()
	db.On("Transaction", mock.Anything).Return(nil).Once()

	assert.NoError(t, p.processBatch(testBatch()))
	db.AssertExpectations(t)
}

func TestProcessBatchExhaustsRetries(t *testing.T) {
	db := &mockDB{}
	q := queue.NewSnapshotQueue(10, logrus.New())
	p := NewSnapshotProcessor(db, q, testConfig(), logrus.New())
	p.retryInterval = time.Millisecond

	// initial attempt plus MaxRetries retries
	db.On("Transaction", mock.Anything).Return(errors.New("disk full")).Times(3)

	err := p.processBatch(testBatch())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist batch")
	db.AssertExpectations(t)
}

func TestProcessorDrainsQueue(t *testing.T) {
	db := &mockDB{}
	q := queue.NewSnapshotQueue(10, logrus.New())
	p := NewSnapshotProcessor(db, q, testConfig(), logrus.New())

	db.On("Transaction", mock.Anything).Return(nil).Once()

	p.Start()
	q.Start()
	defer q.Close()
	defer p.Stop()

	assert.NoError(t, q.Push(testBatch()))
	time.Sleep(100 * time.Millisecond)

	db.AssertExpectations(t)
}
