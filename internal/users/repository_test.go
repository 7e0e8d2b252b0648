package users_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadet-portal/cadet-portal/internal/shared"
	"github.com/cadet-portal/cadet-portal/internal/users"
)

func TestRepositoryListUnitCadets(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE ano_id = \$1 ORDER BY is_approved ASC, name ASC`).
		WithArgs("U1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "regimental_number", "name", "email", "contact", "ano_id", "is_approved", "created_at"}).
			AddRow(int64(2), "C-2", "Asha", "asha@example.com", "99", "U1", false, now).
			AddRow(int64(1), "C-1", "Bala", "bala@example.com", "98", "U1", true, now))

	list, err := users.NewRepository(mock).ListUnitCadets(context.Background(), "U1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "C-2", list[0].RegimentalNumber)
	assert.False(t, list[0].IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUnitCadetNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT regimental_number FROM users WHERE id = \$1 AND ano_id = \$2`).
		WithArgs(int64(10), "U1").
		WillReturnRows(pgxmock.NewRows([]string{"regimental_number"}).AddRow("C-100"))
	mock.ExpectQuery(`SELECT regimental_number FROM users`).
		WithArgs(int64(10), "U2").
		WillReturnRows(pgxmock.NewRows([]string{"regimental_number"}))

	repo := users.NewRepository(mock)
	number, err := repo.UnitCadetNumber(context.Background(), 10, "U1")
	require.NoError(t, err)
	assert.Equal(t, "C-100", number)

	_, err = repo.UnitCadetNumber(context.Background(), 10, "U2")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryMutationsReportAffectedRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET is_approved = TRUE`).
		WithArgs(int64(10), "U1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET is_approved = \$2`).
		WithArgs("C-404", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM admins WHERE ano_id = \$1`).
		WithArgs("U1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := users.NewRepository(mock)
	ok, err := repo.ApproveUnitCadet(context.Background(), 10, "U1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SetCadetApproval(context.Background(), "C-404", false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteAdmin(context.Background(), "U1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListAdmins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM admins ORDER BY is_approved ASC, name ASC`).
		WithArgs().
		WillReturnRows(pgxmock.NewRows([]string{"ano_id", "name", "email", "contact", "role", "type", "is_approved", "created_at", "updated_at"}).
			AddRow("U1", "Major A", "a@example.com", "97", "ANO", "Army", true, now, now))

	list, err := users.NewRepository(mock).ListAdmins(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "U1", list[0].UnitID)
	assert.Equal(t, "Army", list[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
