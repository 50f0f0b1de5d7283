package errs

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain errors surfaced by the queue admission and seat reservation
// engines. User-triggered operations return these synchronously; batch
// ticks log them per item instead.
var (
	ErrNotFound               = errors.New("record not found")
	ErrAlreadyEnrolled        = errors.New("already enrolled")
	ErrNotRemovable           = errors.New("queue entry not removable")
	ErrSeatUnavailable        = errors.New("seat unavailable")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotDraftOrNotOwner     = errors.New("ticket is not draft or not owned by caller")
	ErrLockAcquisitionFailed  = errors.New("lock acquisition failed")
)

type HttpError struct {
	Code    int
	Message string
	Data    any
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("code %d: %s, data: %v", e.Code, e.Message, e.Data)
}

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
