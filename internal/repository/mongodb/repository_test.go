package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

// Runs against a real server only when MONGODB_TEST_URI is set.
func newTestRepository(t *testing.T) *MongoDBRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := "microgreens_test_" + time.Now().Format("20060102150405")
	repo, err := NewMongoDBRepository(ctx, uri, dbName)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.client.Database(dbName).Drop(context.Background())
		_ = repo.Close(context.Background())
	})
	return repo
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, found, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	data := models.DefaultAppData()
	data.Orders = []models.Order{{
		ID:         "ORD-1",
		ClientName: "Cafe Verde",
		Items:      []models.OrderItem{{Variety: "Radish", Quantity: 4}},
		Status:     models.OrderPending,
		CreatedAt:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, repo.Save(ctx, data))
	require.NoError(t, repo.Save(ctx, data))

	loaded, found, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.Orders, 1)
	assert.Equal(t, "Cafe Verde", loaded.Orders[0].ClientName)
	assert.Equal(t, data.SeedInventory, loaded.SeedInventory)
}

func TestWeeklySummaryUpsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveWeeklySummary(ctx, models.WeeklySummary{WeekStart: "2024-05-06", TotalOrders: 3}))
	require.NoError(t, repo.SaveWeeklySummary(ctx, models.WeeklySummary{WeekStart: "2024-05-06", TotalOrders: 4}))
	require.NoError(t, repo.SaveWeeklySummary(ctx, models.WeeklySummary{WeekStart: "2024-05-13", TotalOrders: 1}))

	summaries, err := repo.WeeklySummaries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "2024-05-13", summaries[0].WeekStart)
	assert.Equal(t, 4, summaries[1].TotalOrders)
}
