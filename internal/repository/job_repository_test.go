package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/juajobs/juajobs-backend/internal/models"
)

func newJobRepoWithMock(t *testing.T) (*JobRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewJobRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestJobRepository_List_StableOrder(t *testing.T) {
	repo, mock := newJobRepoWithMock(t)
	ctx := context.Background()

	// id breaks ties between jobs created in the same instant.
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`)).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(ctx, models.JobFilter{Limit: 20, Offset: 0})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_Cancel_InProgressJob(t *testing.T) {
	repo, mock := newJobRepoWithMock(t)
	ctx := context.Background()

	// An in-progress job is cancellable, same as an open one.
	jobID := uuid.New()
	workerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`status IN ('open', 'in_progress')`)).
		WithArgs(jobID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`RETURNING worker_id`)).
		WithArgs(jobID).
		WillReturnRows(sqlmock.NewRows([]string{"worker_id"}).AddRow(workerID.String()))
	mock.ExpectCommit()

	rejected, err := repo.Cancel(ctx, jobID)

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{workerID}, rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepository_Cancel_CompletedJob(t *testing.T) {
	repo, mock := newJobRepoWithMock(t)
	ctx := context.Background()

	jobID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`status IN ('open', 'in_progress')`)).
		WithArgs(jobID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Cancel(ctx, jobID)

	assert.ErrorIs(t, err, ErrJobNotCancellable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
