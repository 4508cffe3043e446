package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/board-service/internal/domain"
)

func TestMapError(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		err  error
		dup  error
		want error
	}{
		{"nil", nil, nil, nil},
		{"no rows", pgx.ErrNoRows, nil, domain.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), nil, domain.ErrNotFound},
		{"unique with dup", &pgconn.PgError{Code: codeUniqueViolation}, domain.ErrDuplicateUser, domain.ErrDuplicateUser},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, nil, domain.ErrNotFound},
		{"bad uuid", &pgconn.PgError{Code: codeInvalidText}, nil, domain.ErrNotFound},
		{"other", boom, nil, boom},
	}
	for _, c := range cases {
		got := mapError(c.err, "op", c.dup)
		if c.want == nil {
			if got != nil {
				t.Errorf("%s: got %v, want nil", c.name, got)
			}
			continue
		}
		if !errors.Is(got, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

// A unique violation without a dup sentinel is passed through wrapped.
func TestMapError_UniqueWithoutDup(t *testing.T) {
	pgErr := &pgconn.PgError{Code: codeUniqueViolation}
	got := mapError(pgErr, "insert job", nil)
	var target *pgconn.PgError
	if !errors.As(got, &target) {
		t.Errorf("got %v, want wrapped *pgconn.PgError", got)
	}
}

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"go":       "%go%",
		"100%":     `%100\%%`,
		"snake_ok": `%snake\_ok%`,
		`a\b`:      `%a\\b%`,
	}
	for in, want := range cases {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
