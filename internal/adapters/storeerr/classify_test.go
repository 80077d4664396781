package storeerr_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/adapters/storeerr"
	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

func TestClassify_NilStaysNil(t *testing.T) {
	assert.NoError(t, storeerr.Classify("op", nil))
}

func TestClassify_ConnectivityIsTransient(t *testing.T) {
	cases := map[string]error{
		"bad conn":      driver.ErrBadConn,
		"sqlite busy":   sqlite3.Error{Code: sqlite3.ErrBusy},
		"pg connection": &pgconn.PgError{Code: "08006"},
		"pg deadlock":   &pgconn.PgError{Code: "40P01"},
		"wrapped":       fmt.Errorf("query: %w", driver.ErrBadConn),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := storeerr.Classify("lease", raw)

			var storeErr *shared.StoreError
			require.ErrorAs(t, err, &storeErr)
			assert.True(t, storeErr.Transient)
			assert.Equal(t, "lease", storeErr.Op)
			assert.True(t, shared.IsTransient(err))
		})
	}
}

func TestClassify_OtherErrorsArePermanent(t *testing.T) {
	err := storeerr.Classify("report", &pgconn.PgError{Code: "23505"})

	var storeErr *shared.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.False(t, storeErr.Transient)
}

func TestClassify_DomainAndContextErrorsPassThrough(t *testing.T) {
	notFound := fmt.Errorf("%w: TimeScale", shared.ErrSettingNotFound)

	assert.Same(t, notFound, storeerr.Classify("read", notFound))
	assert.ErrorIs(t, storeerr.Classify("read", context.Canceled), context.Canceled)

	var storeErr *shared.StoreError
	assert.False(t, errors.As(storeerr.Classify("read", context.Canceled), &storeErr))
}
