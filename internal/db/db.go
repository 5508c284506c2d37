package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect opens the Postgres interest store and applies migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// pair_key holds the sorted, length-prefixed user pair (models.PairKey) so the
// unique constraint covers both directions. The expression index enforces the
// same rule on the raw columns.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS interests (
            id UUID PRIMARY KEY,
            from_user TEXT NOT NULL,
            to_user TEXT NOT NULL,
            pair_key TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'accepted', 'rejected', 'withdrawn')),
            message TEXT NOT NULL DEFAULT '',
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            responded_at TIMESTAMPTZ,
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT interests_pair_uq UNIQUE (pair_key),
            CONSTRAINT interests_not_self CHECK (from_user <> to_user),
            CONSTRAINT interests_responded_at CHECK ((responded_at IS NOT NULL) = (status IN ('accepted', 'rejected')))
        );`,
	`UPDATE interests
        SET pair_key = octet_length(LEAST(from_user COLLATE "C", to_user COLLATE "C")) || ':' ||
            LEAST(from_user COLLATE "C", to_user COLLATE "C") || '|' || GREATEST(from_user COLLATE "C", to_user COLLATE "C")
        WHERE pair_key <> octet_length(LEAST(from_user COLLATE "C", to_user COLLATE "C")) || ':' ||
            LEAST(from_user COLLATE "C", to_user COLLATE "C") || '|' || GREATEST(from_user COLLATE "C", to_user COLLATE "C");`,
	`CREATE UNIQUE INDEX IF NOT EXISTS interests_pair_users_uq
        ON interests (LEAST(from_user, to_user), GREATEST(from_user, to_user));`,
	`CREATE INDEX IF NOT EXISTS interests_to_user_idx ON interests (to_user, created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS interests_from_user_idx ON interests (from_user, created_at DESC);`,
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(migrations)).Msg("database migrations applied")
	return nil
}
