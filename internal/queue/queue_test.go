package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"sateihub/server/internal/models"
)

func TestNewSnapshotQueue(t *testing.T) {
	q := NewSnapshotQueue(10, logrus.New())
	assert.NotNil(t, q)
	assert.Zero(t, q.Len())
	assert.False(t, q.IsClosed())
}

func TestSnapshotQueue_Push(t *testing.T) {
	q := NewSnapshotQueue(2, logrus.New())

	batch := []*models.ValuationRecord{{ID: "a", Address: "東京都新宿区"}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// fill remaining capacity, then overflow
	assert.NoError(t, q.Push(batch))
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestSnapshotQueue_Subscribe(t *testing.T) {
	q := NewSnapshotQueue(10, logrus.New())

	var mu sync.Mutex
	var processed []*models.ValuationRecord

	q.Subscribe(func(records []*models.ValuationRecord) error {
		mu.Lock()
		processed = append(processed, records...)
		mu.Unlock()
		return nil
	})
	q.Start()
	defer q.Close()

	batch := []*models.ValuationRecord{
		{ID: "a", RegionCode: "13"},
		{ID: "b", RegionCode: "27"},
	}
	assert.NoError(t, q.Push(batch))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 2)
	assert.Equal(t, "a", processed[0].ID)
	assert.Equal(t, "b", processed[1].ID)
}

func TestSnapshotQueue_Close(t *testing.T) {
	q := NewSnapshotQueue(10, logrus.New())

	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())

	// second close is a no-op
	assert.NoError(t, q.Close())
}

func TestSnapshotQueue_HandlerErrorDoesNotStopProcessing(t *testing.T) {
	q := NewSnapshotQueue(10, logrus.New())

	var mu sync.Mutex
	calls := 0

	q.Subscribe(func([]*models.ValuationRecord) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return assert.AnError
	})
	q.Start()
	defer q.Close()

	assert.NoError(t, q.Push([]*models.ValuationRecord{{ID: "a"}}))
	assert.NoError(t, q.Push([]*models.ValuationRecord{{ID: "b"}}))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}
