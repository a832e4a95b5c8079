//go:build integration

package attendance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/attendance/store/attendance"
	"rollcall/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			suite.Run(t, &ContractSuite{newStore: func(t *testing.T) Store {
				pg := containers.GetManager().GetPostgres(t, driver)
				if err := pg.TruncateTables(context.Background(), "attendance"); err != nil {
					t.Fatalf("truncate: %v", err)
				}
				return attendance.NewSQLStore(pg.DB)
			}})
		})
	}
}
