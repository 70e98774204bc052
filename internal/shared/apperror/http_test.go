package apperror

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP_DomainError(t *testing.T) {
	got := ToHTTP(ErrNotFound)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, CodeNotFound, got.Code)
}

func TestToHTTP_ConnectionFailuresAre503(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"bad conn", driver.ErrBadConn},
		{"wrapped bad conn", fmt.Errorf("query pending requests: %w", driver.ErrBadConn)},
		{"deadline", context.DeadlineExceeded},
		{"dial error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}},
		{"pg connection exception", &pgconn.PgError{Code: "08006"}},
	}

	for _, tc := range cases {
		got := ToHTTP(tc.err)
		assert.Equalf(t, http.StatusServiceUnavailable, got.Status, tc.name)
		assert.Equalf(t, CodeServiceUnavailable, got.Code, tc.name)
	}
}

func TestToHTTP_UnknownErrorsStay500(t *testing.T) {
	got := ToHTTP(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, CodeInternalError, got.Code)

	// Constraint violations are domain-shaped, not availability problems.
	got = ToHTTP(&pgconn.PgError{Code: "23505"})
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}
