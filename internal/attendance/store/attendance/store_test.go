package attendance_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/attendance/models"
	"rollcall/internal/attendance/store"
	"rollcall/internal/attendance/store/attendance"
	"rollcall/internal/platform/database"
	"rollcall/pkg/platform/sentinel"
)

// Store is the behaviour shared by every engine.
type Store interface {
	Insert(ctx context.Context, rec models.Record) error
	FindByOrigin(ctx context.Context, origin string) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
}

// ContractSuite runs the same invariants against each engine.
type ContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
	store    Store
}

func (s *ContractSuite) SetupTest() {
	s.store = s.newStore(s.T())
}

func record(userID, date, origin string) models.Record {
	return models.Record{
		Name:          userID,
		UserID:        userID,
		Email:         userID + "@userid.edu",
		Date:          date,
		Time:          "09:00",
		Token:         "deadbeef",
		OriginAddress: origin,
	}
}

func (s *ContractSuite) TestInsertAndFindByOrigin() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	got, err := s.store.FindByOrigin(ctx, "10.0.0.5")
	s.Require().NoError(err)
	s.Equal("jerry", got.UserID)
	s.Equal("jerry@userid.edu", got.Email)
}

func (s *ContractSuite) TestFindByOriginNotFound() {
	_, err := s.store.FindByOrigin(context.Background(), "192.0.2.1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ContractSuite) TestSameUserSameDayIsUserDateViolation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	err := s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.6"))
	c, ok := store.ViolatedConstraint(err)
	s.Require().True(ok, "expected constraint error, got %v", err)
	s.Equal(store.ConstraintUserDate, c)
}

func (s *ContractSuite) TestSameOriginIsOriginViolation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	err := s.store.Insert(ctx, record("tom", "2024-01-01", "10.0.0.5"))
	c, ok := store.ViolatedConstraint(err)
	s.Require().True(ok, "expected constraint error, got %v", err)
	s.Equal(store.ConstraintOrigin, c)
}

func (s *ContractSuite) TestUserDateWinsWhenBothConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	err := s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5"))
	c, ok := store.ViolatedConstraint(err)
	s.Require().True(ok)
	s.Equal(store.ConstraintUserDate, c)
}

func (s *ContractSuite) TestOriginScopeIsGlobalAcrossDates() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	err := s.store.Insert(ctx, record("jerry", "2024-01-02", "10.0.0.5"))
	c, ok := store.ViolatedConstraint(err)
	s.Require().True(ok)
	s.Equal(store.ConstraintOrigin, c, "one origin is usable once across all history")
}

func (s *ContractSuite) TestConcurrentSameUserDay() {
	ctx := context.Background()
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, record("jerry", "2024-01-01", fmt.Sprintf("10.0.1.%d", i)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			if c, ok := store.ViolatedConstraint(err); ok && c == store.ConstraintUserDate {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, accepted)
	s.Equal(n-1, conflicts)
	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *ContractSuite) TestConcurrentSameOrigin() {
	ctx := context.Background()
	const n = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, record(fmt.Sprintf("student%d", i), "2024-01-01", "10.0.0.5"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
				return
			}
			if c, ok := store.ViolatedConstraint(err); ok && c == store.ConstraintOrigin {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, accepted)
	s.Equal(n-1, conflicts)
}

func (s *ContractSuite) TestCancelledContextLeavesNoRecord() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Require().Error(s.store.Insert(ctx, record("jerry", "2024-01-01", "10.0.0.5")))

	list, err := s.store.List(context.Background())
	s.Require().NoError(err)
	s.Empty(list)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: func(*testing.T) Store {
		return attendance.NewInMemoryStore()
	}})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: func(t *testing.T) Store {
		db, err := database.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "attendance.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return attendance.NewSQLStore(db)
	}})
}
