// Package storeerr maps driver errors onto the shared store error taxonomy.
package storeerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/andrescamacho/kanban-go/internal/domain/shared"
)

// Classify wraps err in a *shared.StoreError for op.
// Connectivity failures and lock contention are marked transient.
// Domain sentinels and context errors pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomain(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var storeErr *shared.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	if IsTransient(err) {
		return shared.NewConnectivityError(op, err)
	}
	return shared.NewStoreError(op, err)
}

// IsTransient reports whether a raw driver error is worth retrying
func IsTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08: connection exception, 40001: serialization failure,
		// 40P01: deadlock, 57P01: admin shutdown
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "57P01"
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isDomain(err error) bool {
	for _, sentinel := range []error{
		shared.ErrSettingNotFound,
		shared.ErrSettingOutOfRange,
		shared.ErrUnknownWorkerType,
		shared.ErrStationNotLeased,
		shared.ErrProcessNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var cfgErr *shared.ConfigurationError
	var valErr *shared.ValidationError
	return errors.As(err, &cfgErr) || errors.As(err, &valErr)
}
