package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// The engine operations below take a sqlx.ExtContext so they run against
// either a bare connection or a caller's transaction. Every multi-statement
// operation must be called inside a transaction; the typed repositories and
// the resolver wrap them with database.RunInTx.

// NextPosition returns the append slot for a new entry: max position + 1.
// It does not mutate; the caller inserts with the returned position.
func NextPosition(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string) (int, error) {
	max, err := maxPosition(ctx, q, kind, userID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// OpenTop shifts every entry of the user's list down by one and returns the
// prepend slot, position 1. The caller inserts with the returned position
// in the same transaction.
func OpenTop(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string) (int, error) {
	st := kindStatements[kind]
	if _, err := q.ExecContext(ctx, st.shiftAllDown, userID); err != nil {
		return 0, fmt.Errorf("q.ExecContext(shift %s) > %w", kind, err)
	}
	return 1, nil
}

// Move repositions one entry to target, shifting the entries between the
// old and new position by one slot. Targets outside [1, max] are clamped.
// Moving an entry onto its current position is a no-op.
func Move(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string, key Key, target int) error {
	st := kindStatements[kind]

	old, err := entryPosition(ctx, q, kind, userID, key)
	if err != nil {
		return err
	}
	max, err := maxPosition(ctx, q, kind, userID)
	if err != nil {
		return err
	}
	if target < 1 {
		target = 1
	}
	if target > max {
		target = max
	}
	if target == old {
		return nil
	}

	// Shift the displaced block before writing the target so the dense
	// sequence never holds a duplicate outside this transaction.
	if target < old {
		if _, err := q.ExecContext(ctx, st.openGap, userID, target, old); err != nil {
			return fmt.Errorf("q.ExecContext(open gap %s) > %w", kind, err)
		}
	} else {
		if _, err := q.ExecContext(ctx, st.closeGap, userID, target, old); err != nil {
			return fmt.Errorf("q.ExecContext(close gap %s) > %w", kind, err)
		}
	}

	args := append([]any{target, userID}, key...)
	if _, err := q.ExecContext(ctx, st.setPosition, args...); err != nil {
		return fmt.Errorf("q.ExecContext(set position %s) > %w", kind, err)
	}
	return nil
}

// Remove deletes one entry and closes the gap it leaves: every entry that
// sat below it moves up by one.
func Remove(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string, key Key) error {
	st := kindStatements[kind]

	old, err := entryPosition(ctx, q, kind, userID, key)
	if err != nil {
		return err
	}

	args := append([]any{userID}, key...)
	if _, err := q.ExecContext(ctx, st.deleteEntry, args...); err != nil {
		return fmt.Errorf("q.ExecContext(delete %s) > %w", kind, err)
	}
	if _, err := q.ExecContext(ctx, st.compact, userID, old); err != nil {
		return fmt.Errorf("q.ExecContext(compact %s) > %w", kind, err)
	}
	return nil
}

// ReorderAll rewrites every entry's position to its 1-based rank in keys.
// Lists hold tens of entries, so one statement per entry is fine.
func ReorderAll(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string, keys []Key) error {
	st := kindStatements[kind]
	for i, key := range keys {
		args := append([]any{i + 1, userID}, key...)
		if _, err := q.ExecContext(ctx, st.setPosition, args...); err != nil {
			return fmt.Errorf("q.ExecContext(reorder %s) > %w", kind, err)
		}
	}
	return nil
}

// ParseTarget parses a user-supplied manual position.
func ParseTarget(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	return n, nil
}

func entryPosition(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string, key Key) (int, error) {
	st := kindStatements[kind]
	args := append([]any{userID}, key...)

	var pos int
	err := sqlx.GetContext(ctx, q, &pos, st.selectPosition, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s %v", ErrNotFound, kind, key)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlx.GetContext(position %s) > %w", kind, err)
	}
	return pos, nil
}

func maxPosition(ctx context.Context, q sqlx.ExtContext, kind Kind, userID string) (int, error) {
	st := kindStatements[kind]

	var max int
	if err := sqlx.GetContext(ctx, q, &max, st.maxPosition, userID); err != nil {
		return 0, fmt.Errorf("sqlx.GetContext(max position %s) > %w", kind, err)
	}
	return max, nil
}
