package postgres

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/logger"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation はPostgreSQLの一意制約違反コード
const uniqueViolation = "23505"

// participantsUniqueConstraint は(recruitment_id, participant_id)の一意制約名
const participantsUniqueConstraint = "participants_recruitment_participant_key"

type Config struct {
	URL      string
	MaxConns int32
}

// Open はコネクションプールを作成し、疎通確認とテーブル作成を行う
func Open(ctx context.Context, config Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	poolConfig.MaxConnLifetime = 30 * time.Minute

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Str("component", "store").Msg("unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	if err := CreateTables(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func CreateTables(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recruitments (
		id BIGSERIAL PRIMARY KEY,
		category TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		start_time TEXT NOT NULL,
		note TEXT NOT NULL,
		leader_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		thread_id TEXT NOT NULL,
		message_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS participants (
		seq BIGSERIAL PRIMARY KEY,
		recruitment_id BIGINT NOT NULL REFERENCES recruitments(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + participantsUniqueConstraint + ` UNIQUE (recruitment_id, participant_id)
	);

	CREATE INDEX IF NOT EXISTS idx_recruitments_message ON recruitments(thread_id, message_id);
	CREATE INDEX IF NOT EXISTS idx_participants_recruitment_id ON participants(recruitment_id);
	`

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// isDuplicateParticipant は応募者の一意制約違反かどうかを判定する
func isDuplicateParticipant(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == uniqueViolation &&
		pgErr.ConstraintName == participantsUniqueConstraint
}
