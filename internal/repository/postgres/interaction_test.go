package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameworld-labs/gameworld/internal/repository"
	apperrors "github.com/gameworld-labs/gameworld/pkg/errors"
)

var entryCols = []string{
	"user_id", "game_id", "rating", "play_time", "created_at", "updated_at",
}

func TestInteractionRepository_InTx_Commit(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_ratings").
		WithArgs("user-1", "game-1", 2.5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		return tx.UpsertEntryPlayTime(ctx, "user-1", "game-1", 2.5)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_InTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_InTx_SerializationFailureIsConflict(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectCommit().
		WillReturnError(errors.New("ERROR: could not serialize access (SQLSTATE 40001)"))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		return nil
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInteractionRepository_InTx_DeadlockInsideTxIsConflict(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	// A deadlock victim gets its error from the blocked statement, not
	// from commit; it must still surface as a retryable conflict.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM games WHERE id = \\$1 FOR UPDATE").
		WithArgs("game-1").
		WillReturnError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		_, err := tx.GetGameForUpdate(ctx, "game-1")
		return err
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxStore_GetGameForUpdate_Locks(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	g := sampleGame()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM games WHERE id = \\$1 FOR UPDATE").
		WithArgs(g.ID).
		WillReturnRows(pgxmock.NewRows(gameCols).AddRow(gameRow(g)...))
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		got, err := tx.GetGameForUpdate(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, g.Name, got.Name)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxStore_GetEntry_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM user_ratings").
		WithArgs("user-1", "game-1").
		WillReturnRows(pgxmock.NewRows(entryCols))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		_, err := tx.GetEntry(ctx, "user-1", "game-1")
		return err
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxStore_SetEntryRating_MissingEntry(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE user_ratings").
		WithArgs("user-1", "game-1", 5).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		return tx.SetEntryRating(ctx, "user-1", "game-1", 5)
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxStore_DeleteEntriesByGame_ReturnsAffectedUsers(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewInteractionRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM user_ratings WHERE game_id = \\$1 RETURNING user_id").
		WithArgs("game-1").
		WillReturnRows(
			pgxmock.NewRows([]string{"user_id"}).AddRow("user-1").AddRow("user-2"),
		)
	mock.ExpectCommit()

	err := repo.InTx(context.Background(), func(ctx context.Context, tx repository.TxStore) error {
		users, err := tx.DeleteEntriesByGame(ctx, "game-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"user-1", "user-2"}, users)
		return nil
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
