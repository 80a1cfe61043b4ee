package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilink/disruption-engine/internal/domain"
)

func facilityColumns() []string {
	return []string{"id", "name", "type", "capacity", "current_inventory", "utilization_rate", "connectivity", "updated_at"}
}

func TestFacilityRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFacilityRepository(db, repoLogger())

	mock.ExpectExec("INSERT INTO facilities").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Facility{
		ID:               "f1",
		Name:             "Munich DC",
		Type:             "distribution_center",
		Capacity:         10000,
		CurrentInventory: 5000,
		UtilizationRate:  0.8,
		Connectivity:     []string{"f2", "f3"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFacilityRepository(db, repoLogger())

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(facilityColumns()).
			AddRow("f1", "Munich DC", "distribution_center", 10000.0, 5000.0, 0.8, "{f2,f3}", updated)
		mock.ExpectQuery("SELECT (.+) FROM facilities").
			WithArgs("f1").
			WillReturnRows(rows)

		got, err := repo.GetByID(context.Background(), "f1")
		require.NoError(t, err)
		assert.Equal(t, "f1", got.ID)
		assert.Equal(t, 10000.0, got.Capacity)
		assert.Equal(t, []string{"f2", "f3"}, got.Connectivity)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM facilities").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(facilityColumns()))

		_, err := repo.GetByID(context.Background(), "nope")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryGetByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFacilityRepository(db, repoLogger())

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown ids are omitted", func(t *testing.T) {
		rows := sqlmock.NewRows(facilityColumns()).
			AddRow("f1", "Munich DC", "distribution_center", 10000.0, 5000.0, 0.8, "{}", updated)
		mock.ExpectQuery("SELECT (.+) FROM facilities").
			WillReturnRows(rows)

		got, err := repo.GetByIDs(context.Background(), []string{"f1", "ghost"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "f1", got[0].ID)
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		got, err := repo.GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFacilityRepository(db, repoLogger())

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(facilityColumns()).
		AddRow("f1", "Munich DC", "distribution_center", 10000.0, 5000.0, 0.8, "{}", updated).
		AddRow("f2", "Hamburg Port", "port", 50000.0, 20000.0, 0.6, "{f1}", updated)
	mock.ExpectQuery("SELECT (.+) FROM facilities").
		WithArgs(50, 0).
		WillReturnRows(rows)

	// Zero limit selects the default page size.
	got, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "f2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityRepositoryUpdateUtilization(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFacilityRepository(db, repoLogger())

	t.Run("out of range rejected without touching the database", func(t *testing.T) {
		err := repo.UpdateUtilization(context.Background(), "f1", 1.2)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE facilities").
			WithArgs("f1", 0.95, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.UpdateUtilization(context.Background(), "f1", 0.95))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE facilities").
			WithArgs("nope", 0.5, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.UpdateUtilization(context.Background(), "nope", 0.5)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
