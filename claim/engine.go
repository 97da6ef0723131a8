// Package claim implements the exactly-once conditional mutation every
// race-sensitive endpoint goes through: contest submissions, votes, event
// roles, assignment submissions, tour bookings. The exclusivity check and
// the write are always one atomic statement against the store; no caller may
// read an aggregate, decide in process, and then write.
package claim

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Outcome classifies why a claim was rejected.
type Outcome string

const (
	OutcomeAlreadyClaimed     Outcome = "already_claimed"
	OutcomePreconditionFailed Outcome = "precondition_failed"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeCapacityExhausted  Outcome = "capacity_exhausted"
)

// Error is a classified claim rejection. Every failure path out of the
// engine is attributable to exactly one outcome with a human-readable
// reason; the engine never surfaces an ambiguous "failed".
type Error struct {
	Outcome Outcome
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Outcome, e.Reason)
}

func NewError(outcome Outcome, reason string) *Error {
	return &Error{Outcome: outcome, Reason: reason}
}

// OutcomeOf extracts the claim outcome from err, if it carries one.
func OutcomeOf(err error) (Outcome, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Outcome, true
	}
	return "", false
}

// Slot is the row a winning claim inserts, protected by a unique index over
// its natural key (typically aggregate id + user id).
type Slot struct {
	Table   string
	Columns []string
	Values  []interface{}
}

// Guard is a predicate over the aggregate evaluated inside the same SQL
// statement as the slot insert, e.g. "contest exists and is active". Query is
// a complete SELECT usable under EXISTS.
type Guard struct {
	Query string
	Args  []interface{}
}

// Capacity describes a capped slot type. The engine bumps Counter on the
// aggregate with a conditional UPDATE (counter < cap) in the same transaction
// as the slot insert; the conditional bump is the linearization point for the
// cap, the slot's unique index for per-user exclusivity.
type Capacity struct {
	Table   string
	Counter string
	Cap     string
	Where   string
	Args    []interface{}
}

// Effect is an optional follow-up update applied in the same transaction,
// only after a winning insert (e.g. a denormalized vote counter).
type Effect struct {
	Table string
	Set   string
	Where string
	Args  []interface{}
}

// Diagnoser reads the aggregate after a rejected claim and classifies the
// rejection. The read is informational only and never authorizes a write.
// A nil *Error means "nothing visibly wrong", which the engine reports as a
// loss to a concurrent request. A non-nil error is a store failure during
// the read; it must surface unclassified instead of masquerading as a
// classified rejection.
type Diagnoser func(tx *gorm.DB) (*Error, error)

// Claim is one conditional state transition.
type Claim struct {
	Slot     Slot
	Guard    Guard
	Capacity *Capacity
	Effect   *Effect
	Diagnose Diagnoser
}

// Update is a single-statement compare-and-swap on an aggregate column slot,
// e.g. an event's moderator. Args are the SET arguments followed by the
// WHERE arguments.
type Update struct {
	Table    string
	Set      string
	Where    string
	Args     []interface{}
	Diagnose Diagnoser
}

// Engine executes claims against the backing store.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// errClaimLost aborts the claim transaction without being a real failure;
// it signals "predicate did not hold, go diagnose".
var errClaimLost = errors.New("claim predicate did not hold")

// TryClaim performs the claim. Nil means the caller won the slot. A rejected
// claim comes back as *Error after a best-effort diagnostic read.
//
// The simple form (no capacity, no effect) is a single statement:
//
//	INSERT INTO slot (...) SELECT ... WHERE EXISTS (guard) ON CONFLICT DO NOTHING
//
// RowsAffected tells whether the caller won. The capped form wraps the
// counter bump and the insert in one transaction; a conflicting insert rolls
// the bump back, so a lost race never leaks capacity.
func (e *Engine) TryClaim(ctx context.Context, c Claim) error {
	db := e.DB.WithContext(ctx)

	if c.Capacity == nil && c.Effect == nil {
		res := db.Exec(c.insertSQL(), c.insertArgs()...)
		if res.Error != nil {
			return errors.Wrap(res.Error, "claim insert")
		}
		if res.RowsAffected == 1 {
			return nil
		}
		return e.diagnose(ctx, c.Diagnose)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if c.Capacity != nil {
			cc := c.Capacity
			sql := fmt.Sprintf("UPDATE %s SET %s = %s + 1 WHERE (%s) AND %s < %s",
				cc.Table, cc.Counter, cc.Counter, cc.Where, cc.Counter, cc.Cap)
			res := tx.Exec(sql, cc.Args...)
			if res.Error != nil {
				return errors.Wrap(res.Error, "claim capacity bump")
			}
			if res.RowsAffected == 0 {
				return errClaimLost
			}
		}

		res := tx.Exec(c.insertSQL(), c.insertArgs()...)
		if res.Error != nil {
			return errors.Wrap(res.Error, "claim insert")
		}
		if res.RowsAffected == 0 {
			return errClaimLost
		}

		if c.Effect != nil {
			eff := c.Effect
			sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", eff.Table, eff.Set, eff.Where)
			res := tx.Exec(sql, eff.Args...)
			if res.Error != nil {
				return errors.Wrap(res.Error, "claim effect")
			}
			if res.RowsAffected == 0 {
				return errClaimLost
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, errClaimLost) {
		return e.diagnose(ctx, c.Diagnose)
	}
	return err
}

// TryUpdate performs a column-slot claim as one conditional UPDATE with a
// rows-affected check.
func (e *Engine) TryUpdate(ctx context.Context, u Update) error {
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", u.Table, u.Set, u.Where)
	res := e.DB.WithContext(ctx).Exec(sql, u.Args...)
	if res.Error != nil {
		return errors.Wrap(res.Error, "claim update")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return e.diagnose(ctx, u.Diagnose)
}

func (e *Engine) diagnose(ctx context.Context, diagnose Diagnoser) error {
	if diagnose != nil {
		cerr, err := diagnose(e.DB.WithContext(ctx))
		if err != nil {
			return errors.Wrap(err, "claim diagnosis")
		}
		if cerr != nil {
			return cerr
		}
	}
	// The diagnostic read races with concurrent writers; if the world looks
	// fine now, the claim lost to a request that landed in between.
	return NewError(OutcomeAlreadyClaimed, "claim lost to a concurrent request")
}

func (c Claim) insertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(c.Slot.Columns)), ", ")
	if c.Guard.Query == "" {
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
			c.Slot.Table, strings.Join(c.Slot.Columns, ", "), placeholders)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s WHERE EXISTS (%s) ON CONFLICT DO NOTHING",
		c.Slot.Table, strings.Join(c.Slot.Columns, ", "), placeholders, c.Guard.Query)
}

func (c Claim) insertArgs() []interface{} {
	args := make([]interface{}, 0, len(c.Slot.Values)+len(c.Guard.Args))
	args = append(args, c.Slot.Values...)
	args = append(args, c.Guard.Args...)
	return args
}
