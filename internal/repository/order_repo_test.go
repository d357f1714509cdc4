package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycallback/internal/models"
	"paycallback/internal/testutil"
)

func TestConditionalSetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testutil.NewDB(t))
	require.NoError(t, repo.Create(ctx, &models.Order{OrderID: "ORD-1", UserID: "u1", Amount: 50000}))

	applied, err := repo.ConditionalSetStatus(ctx, "ORD-1", models.OrderPending, models.OrderPaid)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.ConditionalSetStatus(ctx, "ORD-1", models.OrderPending, models.OrderCancelled)
	require.NoError(t, err)
	assert.False(t, applied, "second transition must not match")

	status, err := repo.GetStatus(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, status)
}

func TestConditionalSetStatusUnknownOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testutil.NewDB(t))

	applied, err := repo.ConditionalSetStatus(ctx, "missing", models.OrderPending, models.OrderPaid)
	require.NoError(t, err)
	assert.False(t, applied)

	_, err = repo.GetStatus(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(testutil.NewDB(t))
	for _, o := range []models.Order{
		{OrderID: "A", UserID: "u", Amount: 1},
		{OrderID: "B", UserID: "u", Amount: 1},
		{OrderID: "C", UserID: "u", Amount: 1, Status: models.OrderPaid},
	} {
		o := o
		require.NoError(t, repo.Create(ctx, &o))
	}

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[models.OrderPending])
	assert.Equal(t, int64(1), counts[models.OrderPaid])
}
