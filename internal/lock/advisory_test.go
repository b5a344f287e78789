package lock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, *AdvisoryLock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewLoaderLock(db, "ldbc", 2)
}

func TestLoaderLockName(t *testing.T) {
	assert.Equal(t, "snbloader:loader:ldbc:0", LoaderLockName("ldbc", 0))
	assert.Equal(t, "snbloader:loader:sf1_graph:3", LoaderLockName("sf1 graph", 3))
	assert.Equal(t, "snbloader:loader:a_b:1", LoaderLockName("a;b", 1))

	long := LoaderLockName(strings.Repeat("g", 80), 7)
	assert.Len(t, long, 64)
	assert.True(t, strings.HasSuffix(long, ":7"))
}

func TestAcquireLock(t *testing.T) {
	tests := []struct {
		name     string
		result   interface{}
		acquired bool
		wantErr  string
	}{
		{"acquired", 1, true, ""},
		{"timeout", 0, false, ""},
		{"null", nil, false, "returned NULL"},
		{"unexpected", 5, false, "unexpected GET_LOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, lock := newMock(t)
			mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
				WithArgs("snbloader:loader:ldbc:2", TimeoutShort).
				WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(tt.result))

			acquired, err := lock.AcquireLock(context.Background(), TimeoutShort)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.acquired, acquired)
			assert.Equal(t, tt.acquired, lock.IsHeld())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAcquireLock_AlreadyHeld(t *testing.T) {
	mock, lock := newMock(t)
	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(1))

	_, err := lock.TryAcquire(context.Background())
	require.NoError(t, err)

	// Second call must not hit the database.
	acquired, err := lock.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLock_QueryError(t *testing.T) {
	mock, lock := newMock(t)
	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").WillReturnError(errors.New("connection reset"))

	_, err := lock.AcquireLock(context.Background(), TimeoutShort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute GET_LOCK")
}

func TestReleaseLock(t *testing.T) {
	mock, lock := newMock(t)

	released, err := lock.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.False(t, released, "releasing an unheld lock is a no-op")

	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(1))
	mock.ExpectQuery("SELECT RELEASE_LOCK(?)").
		WithArgs("snbloader:loader:ldbc:2").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(1))

	_, err = lock.TryAcquire(context.Background())
	require.NoError(t, err)
	released, err = lock.ReleaseLock(context.Background())
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, lock.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOrFail_HeldElsewhere(t *testing.T) {
	mock, lock := newMock(t)
	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(0))

	err := lock.AcquireOrFail(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockTimeout))
	assert.Contains(t, err.Error(), "snbloader:loader:ldbc:2")
}

func TestIsLoaderRunning(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	// Free: acquired then released.
	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
		WithArgs("snbloader:loader:ldbc:0", TimeoutImmediate).
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(1))
	mock.ExpectQuery("SELECT RELEASE_LOCK(?)").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(1))
	running, err := IsLoaderRunning(context.Background(), db, "ldbc", 0)
	require.NoError(t, err)
	assert.False(t, running)

	// Held by another instance.
	mock.ExpectQuery("SELECT GET_LOCK(?, ?)").
		WillReturnRows(sqlmock.NewRows([]string{"r"}).AddRow(0))
	running, err = IsLoaderRunning(context.Background(), db, "ldbc", 0)
	require.NoError(t, err)
	assert.True(t, running)

	assert.NoError(t, mock.ExpectationsWereMet())
}
