package overtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calcfolha/internal/domain/auth"
	"calcfolha/internal/platform/config"
	"calcfolha/internal/platform/db"
)

func TestEncodeBlobsWritesEmptyEntryList(t *testing.T) {
	calc := weekCalculation()
	calc.DayEntries = nil

	_, _, entries, err := encodeBlobs(calc)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(entries))
}

func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dsn})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool, filepath.Join("..", "..", "..", "migrations"), zap.NewNop()))

	ownerID, err := auth.NewStore(pool).EnsureUser(ctx, "store-test-"+uuid.NewString()+"@example.com", "x", false)
	require.NoError(t, err)
	otherID, err := auth.NewStore(pool).EnsureUser(ctx, "store-test-"+uuid.NewString()+"@example.com", "x", false)
	require.NoError(t, err)

	store := NewStore(pool)
	calc := weekCalculation()
	id, err := store.Create(ctx, ownerID, calc)
	require.NoError(t, err)

	got, err := store.Get(ctx, id, ownerID)
	require.NoError(t, err)
	assert.Equal(t, calc.StartDate, got.StartDate)
	assert.Equal(t, calc.EndDate, got.EndDate)
	assert.Equal(t, calc.DayEntries, got.DayEntries)
	assert.Equal(t, calc.OvertimePercentages, got.OvertimePercentages)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	_, err = store.Get(ctx, id, otherID)
	assert.ErrorIs(t, err, ErrCalculationNotFound)

	got.Description = "updated"
	ok, err := store.Update(ctx, id, ownerID, got)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Update(ctx, id, otherID, got)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := store.List(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "updated", list[0].Description)

	ok, err = store.Delete(ctx, id, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = store.Get(ctx, id, ownerID)
	assert.ErrorIs(t, err, ErrCalculationNotFound)
}
