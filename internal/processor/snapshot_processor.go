package processor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sateihub/server/config"
	"sateihub/server/internal/database"
	"sateihub/server/internal/models"
	"sateihub/server/internal/queue"
)

// TransactionRunner is the slice of *gorm.DB the processor needs, kept
// narrow so tests can script it.
type TransactionRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// SnapshotProcessor drains the snapshot queue and persists batches in
// transactions with exponential-backoff retry. Persistence is
// best-effort: exhausted retries are logged and the batch is dropped.
type SnapshotProcessor struct {
	db            TransactionRunner
	logger        *logrus.Logger
	config        *config.Config
	queue         *queue.SnapshotQueue
	retryInterval time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewSnapshotProcessor(db TransactionRunner, q *queue.SnapshotQueue, cfg *config.Config, logger *logrus.Logger) *SnapshotProcessor {
	if logger == nil {
		logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SnapshotProcessor{
		db:            db,
		queue:         q,
		config:        cfg,
		logger:        logger,
		retryInterval: 500 * time.Millisecond,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start subscribes the processor to the queue.
func (p *SnapshotProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.ValuationRecord) error {
		return p.processBatch(batch)
	})
}

// Stop cancels any in-flight retry loop.
func (p *SnapshotProcessor) Stop() {
	p.cancel()
}

func (p *SnapshotProcessor) processBatch(batch []*models.ValuationRecord) error {
	persist := func() error {
		return p.db.Transaction(func(tx *gorm.DB) error {
			return database.SaveValuationRecords(tx, batch)
		})
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.config.BatchProcessing.MaxRetries)), p.ctx)

	if err := backoff.Retry(persist, policy); err != nil {
		return fmt.Errorf("failed to persist batch of %d snapshots: %w", len(batch), err)
	}

	p.logger.WithField("batch_size", len(batch)).Debug("persisted snapshot batch")
	return nil
}
