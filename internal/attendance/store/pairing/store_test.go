package pairing_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/attendance/models"
	"rollcall/internal/attendance/store/pairing"
	"rollcall/internal/platform/database"
)

type pairingStore interface {
	Insert(ctx context.Context, p models.FlaggedPairing) error
	List(ctx context.Context) ([]models.FlaggedPairing, error)
}

func engines(t *testing.T) map[string]pairingStore {
	db, err := database.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "pairings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return map[string]pairingStore{
		"memory": pairing.NewInMemoryStore(),
		"sqlite": pairing.NewSQLStore(db),
	}
}

func TestPairingStores(t *testing.T) {
	for name, s := range engines(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			at := time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)
			tom := models.Record{Name: "Tom", UserID: "tom", Email: "tom@userid.edu", Date: "2024-01-01", Time: "09:05", Token: "aaaa1111", OriginAddress: "10.0.0.5"}
			jerry := models.Record{Name: "Jerry", UserID: "jerry", Email: "jerry@userid.edu", OriginAddress: "10.0.0.5"}
			spike := models.Record{Name: "Spike", UserID: "spike", Email: "spike@userid.edu", Date: "2024-01-01", Time: "09:06", Token: "bbbb2222", OriginAddress: "10.0.0.5"}

			require.NoError(t, s.Insert(ctx, models.NewFlaggedPairing(tom, jerry, at)))
			require.NoError(t, s.Insert(ctx, models.NewFlaggedPairing(spike, jerry, at.Add(time.Minute))))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "spike", list[0].TUserID, "newest first")
			assert.Equal(t, "tom", list[1].TUserID)
			assert.Equal(t, "jerry", list[1].SUserID)
			assert.Equal(t, "10.0.0.5", list[1].OriginAddress)
			assert.True(t, at.Equal(list[1].FlaggedAt))
			assert.NotZero(t, list[1].ID)
		})
	}
}
