package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
)

// Postgres implements Store on a pgxpool connection pool. User documents
// keep schedule, completion log and dedup flags as JSONB columns; flag
// checks and writes are single-field point operations so the check-then-set
// race window stays as narrow as the round trip.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates and validates a connection pool.
func NewPostgres(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() { p.pool.Close() }

// Ping verifies the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	var n int
	return p.pool.QueryRow(ctx, "health_check").Scan(&n)
}

// ListUsers returns a snapshot of every registered user.
func (p *Postgres) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := p.pool.Query(ctx, "list_users")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var (
			u                       User
			name, token, tz, pairID *string
			scheduleB, markedB      []byte
		)
		if err := rows.Scan(&u.ID, &name, &token, &tz, &pairID, &scheduleB, &markedB); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if name != nil {
			u.Name = *name
		}
		if token != nil {
			u.FCMToken = *token
		}
		if tz != nil {
			u.Timezone = *tz
		}
		if pairID != nil {
			u.PairID = *pairID
		}
		if len(scheduleB) > 0 {
			if err := json.Unmarshal(scheduleB, &u.Schedule); err != nil {
				return nil, fmt.Errorf("decode schedule for %s: %w", u.ID, err)
			}
		}
		if len(markedB) > 0 {
			if err := json.Unmarshal(markedB, &u.Marked); err != nil {
				return nil, fmt.Errorf("decode completion log for %s: %w", u.ID, err)
			}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListPairs returns the pairing directory keyed by pair id.
func (p *Postgres) ListPairs(ctx context.Context) (map[string]Pair, error) {
	rows, err := p.pool.Query(ctx, "list_pairs")
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[string]Pair)
	for rows.Next() {
		var pr Pair
		if err := rows.Scan(&pr.ID, &pr.User1, &pr.User2); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs[pr.ID] = pr
	}
	return pairs, rows.Err()
}

// FlagExists reports whether a dedup flag is set on a user's document.
func (p *Postgres) FlagExists(ctx context.Context, userID string, key FlagKey) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, "flag_exists", userID, key.String()).Scan(&exists)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("flag exists %s/%s: %w", userID, key, err)
	}
	return exists, nil
}

// SetFlag sets a dedup flag on a user's document.
func (p *Postgres) SetFlag(ctx context.Context, userID string, key FlagKey) error {
	if _, err := p.pool.Exec(ctx, "set_flag", userID, key.String()); err != nil {
		return fmt.Errorf("set flag %s/%s: %w", userID, key, err)
	}
	return nil
}

// PurgeFlagsBefore trims flags dated before cutoffDate from every user
// document. Flag field names always end with their YYYY-MM-DD date, which
// the SQL relies on.
func (p *Postgres) PurgeFlagsBefore(ctx context.Context, cutoffDate string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
		UPDATE users
		SET flags = COALESCE((
			SELECT jsonb_object_agg(key, value)
			FROM jsonb_each(flags)
			WHERE right(key, 10) >= $1
		), '{}'::jsonb)
		WHERE flags <> '{}'::jsonb
		  AND EXISTS (
			SELECT 1 FROM jsonb_each(flags) WHERE right(key, 10) < $1
		  )`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("purge flags before %s: %w", cutoffDate, err)
	}
	return tag.RowsAffected(), nil
}

// registerPreparedStatements registers the statements the notification core
// uses. Prepared statements eliminate parse overhead on every cron run.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Directory snapshots
		"list_users": "SELECT id, name, fcm_token, timezone, pair_id, schedule, marked FROM users",
		"list_pairs": "SELECT id, user1, user2 FROM pairs",

		// Dedup flags: point existence check and point write
		"flag_exists": "SELECT flags ? $2 FROM users WHERE id = $1",
		"set_flag":    "UPDATE users SET flags = flags || jsonb_build_object($2::text, true) WHERE id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
