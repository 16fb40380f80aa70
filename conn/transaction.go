package conn

import (
	"context"

	"github.com/nbpq/nbpq/pqlog"
)

// Transaction implements spec.md §4.5's combinator exactly: BEGIN, await
// body, COMMIT on a normal return / ROLLBACK on a body error, with exactly
// one of END/ROLLBACK issued along every exit path including cancellation.
// Grounded on the teacher's migrate/migrate.go Transaction(func() bool)
// combinator, generalized from a bool result to an arbitrary value V.
func (c *Connection) Transaction(ctx context.Context, level IsoLevel, body func(ctx context.Context) (any, error)) (any, error) {
	if err := c.StartTransaction(ctx, level); err != nil {
		return nil, err
	}

	value, bodyErr := body(ctx)

	if bodyErr == nil {
		if err := c.Commit(ctx); err != nil {
			return nil, err
		}
		return value, nil
	}

	if err := c.Rollback(ctx); err != nil {
		// The body's failure is still what gets reported; a failed rollback
		// is logged but never supersedes it, per spec.md §4.5 step 4.
		c.logger.Log(ctx, pqlog.LevelWarn, "rollback failed after body error", map[string]any{
			"id":        c.ID,
			"body_err":  bodyErr.Error(),
			"rollback_err": err.Error(),
		})
	}

	return nil, bodyErr
}
