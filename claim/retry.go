package claim

import (
	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	Logger "github.com/openhive/hivemux/utils/log"
	"github.com/pkg/errors"
)

// ErrExhaustedAttempts is returned by WithUniqueRetry when every generated
// value collided. Surfaced as a conflict at the API boundary, never retried
// indefinitely.
var ErrExhaustedAttempts = errors.New("exhausted attempts to generate a unique value")

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique constraint
// violation. The error type depends on which driver produced it: gorm's
// postgres driver speaks pgx, the plain database/sql paths speak lib/pq.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}

// WithUniqueRetry handles creation-time uniqueness collisions (a slug landing
// on an existing one). generate produces a candidate value, create attempts
// the insert; on a unique violation the value is regenerated up to
// maxAttempts times. Collisions here are expected to be rare, unlike the
// routine contention the claim engine handles on updates.
func WithUniqueRetry(maxAttempts int, generate func(attempt int) string, create func(value string) error) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		value := generate(attempt)
		err := create(value)
		if err == nil {
			return value, nil
		}
		if !IsUniqueViolation(err) {
			return "", err
		}
		Logger.Log.Infof("unique value %q collided on attempt %d, regenerating", value, attempt+1)
	}
	return "", ErrExhaustedAttempts
}
