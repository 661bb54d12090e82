package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pothole-heatmap-backend/internal/model"
)

func TestSnapshotCache_ReadAfterWrite(t *testing.T) {
	c := New(time.Hour)

	_, found := c.Read()
	assert.False(t, found, "a fresh cache starts empty")
	assert.False(t, c.IsFresh())

	records := []model.PotholeRecord{
		{ID: 1, Status: model.StatusOpen},
		{ID: 2, Status: model.StatusClosed},
	}
	c.Write(records)

	entry, found := c.Read()
	require.True(t, found)
	assert.Equal(t, records, entry.Records)
	assert.WithinDuration(t, time.Now().UTC(), entry.FetchedAt, 5*time.Second)
	assert.True(t, c.IsFresh())
}

func TestSnapshotCache_WriteReplacesWholesale(t *testing.T) {
	c := New(time.Hour)

	c.Write([]model.PotholeRecord{{ID: 1}, {ID: 2}, {ID: 3}})
	c.Write([]model.PotholeRecord{{ID: 9}})

	entry, found := c.Read()
	require.True(t, found)
	require.Len(t, entry.Records, 1, "a second write overwrites, it does not merge")
	assert.Equal(t, int64(9), entry.Records[0].ID)
}

func TestSnapshotCache_ExpiresAtomically(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Write([]model.PotholeRecord{{ID: 1}})
	assert.True(t, c.IsFresh())

	time.Sleep(80 * time.Millisecond)

	_, found := c.Read()
	assert.False(t, found, "an expired entry reads as absent")
	assert.False(t, c.IsFresh())
}
