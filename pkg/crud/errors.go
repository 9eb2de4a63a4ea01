package crud

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row, or every candidate of a
	// relation operation, does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write lost against a
	// concurrent mutation of the same row.
	ErrConflict = errors.New("record was modified concurrently")
	// ErrAlreadyExists is returned when a create collides with an existing
	// primary or unique key.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidQuery is returned for filter, sort or paging arguments that
	// cannot be applied.
	ErrInvalidQuery = errors.New("invalid query")
)

const pgUniqueViolation = "23505"

// translate maps driver and gorm errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return errors.Join(ErrAlreadyExists, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite and untranslated drivers only expose the message
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "UNIQUE constraint failed")
}
