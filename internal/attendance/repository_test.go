package attendance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/attendance"
	"github.com/cadet-portal/cadet-portal/internal/shared"
)

func TestRepositoryUpsertUsesConflictClause(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var noRemarks *string
	mock.ExpectExec(`ON CONFLICT \(fallin_id, regimental_number\) DO UPDATE`).
		WithArgs(int64(1), "C-100", "U1", "Present", noRemarks).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = attendance.NewRepository(mock).Upsert(context.Background(), 1, "U1",
		attendance.Mark{RegimentalNumber: "C-100", Status: "Present"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpsertWrapsError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(int64(1), "C-100", "U1", "Present", pgxmock.AnyArg()).
		WillReturnError(boom)

	err = attendance.NewRepository(mock).Upsert(context.Background(), 1, "U1",
		attendance.Mark{RegimentalNumber: "C-100", Status: "Present", Remarks: "late"})
	assert.ErrorIs(t, err, boom)
}

func TestRepositoryFallinUnit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT ano_id FROM fallin").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"ano_id"}).AddRow("U1"))
	mock.ExpectQuery("SELECT ano_id FROM fallin").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"ano_id"}))

	repo := attendance.NewRepository(mock)
	unit, err := repo.FallinUnit(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "U1", unit)

	_, err = repo.FallinUnit(context.Background(), 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
