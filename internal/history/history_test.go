package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRing_EvictsOldest(t *testing.T) {
	ring := NewRing(3)
	for i := 1; i <= 5; i++ {
		ring.Add(Record{ID: fmt.Sprintf("rec-%d", i)})
	}

	records := ring.List()
	require.Len(t, records, 3)
	assert.Equal(t, "rec-5", records[0].ID, "most recent first")
	assert.Equal(t, "rec-4", records[1].ID)
	assert.Equal(t, "rec-3", records[2].ID)
}

func TestRing_ListIsSnapshot(t *testing.T) {
	ring := NewRing(3)
	ring.Add(Record{ID: "a"})

	records := ring.List()
	ring.Add(Record{ID: "b"})

	assert.Len(t, records, 1)
	assert.Equal(t, 2, ring.Len())
}

func TestRecorder_DrainsIntoRing(t *testing.T) {
	ring := NewRing(10)
	rec := NewRecorder(zap.NewNop(), ring)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Record(Record{ID: "one", Status: StatusSuccess})
	rec.Record(Record{ID: "two", Status: StatusError, Error: "boom"})

	require.Eventually(t, func() bool {
		return ring.Len() == 2
	}, time.Second, 5*time.Millisecond)

	records := ring.List()
	assert.Equal(t, "two", records[0].ID)
	assert.Equal(t, "boom", records[0].Error)
	assert.Equal(t, "one", records[1].ID)
}
