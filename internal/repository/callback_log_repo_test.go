package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycallback/internal/models"
	"paycallback/internal/testutil"
)

func TestCallbackLogRetention(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewCallbackLogRepository(db)

	old := &models.CallbackLog{Provider: "tripay", OrderID: "ORD-1", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &models.CallbackLog{Provider: "tripay", OrderID: "ORD-1", CreatedAt: time.Now()}
	require.NoError(t, repo.Record(ctx, old))
	require.NoError(t, repo.Record(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	entries, err := repo.FindByOrderID(ctx, "ORD-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, fresh.ID, entries[0].ID)
}

func TestFlagAllForRefresh(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.StockMessage{ChannelID: "c", MessageID: "1"}).Error)
	require.NoError(t, db.Create(&models.StockMessage{ChannelID: "c", MessageID: "2", NeedsRefresh: true}).Error)

	flagged, err := NewStockMessageRepository(db).FlagAllForRefresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged)

	var stale int64
	require.NoError(t, db.Model(&models.StockMessage{}).Where("needs_refresh = ?", true).Count(&stale).Error)
	assert.Equal(t, int64(2), stale)
}
