package pushconfig

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production Store backend, selected when
// ADCP_DATABASE_URL is configured. `set` runs inside a transaction so a
// racing pair of concurrent registrations for the same id cannot both
// observe "no existing row" and insert two active configs (§5 locking
// discipline).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const pushConfigSchema = `
CREATE TABLE IF NOT EXISTS push_notification_configs (
	tenant_id    TEXT NOT NULL,
	principal_id TEXT NOT NULL,
	id           TEXT NOT NULL,
	url          TEXT NOT NULL,
	authentication_type  TEXT NOT NULL DEFAULT '',
	authentication_token TEXT NOT NULL DEFAULT '',
	validation_token     TEXT NOT NULL DEFAULT '',
	session_id   TEXT NOT NULL DEFAULT '',
	is_active    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, principal_id, id)
)`

// EnsureSchema creates the table if it does not already exist. Called
// once at startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, pushConfigSchema)
	return err
}

func (s *PostgresStore) Set(ctx context.Context, cfg Config) (Config, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Config{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO push_notification_configs
			(tenant_id, principal_id, id, url, authentication_type, authentication_token, validation_token, session_id, is_active, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,TRUE, now())
		ON CONFLICT (tenant_id, principal_id, id) DO UPDATE SET
			url = EXCLUDED.url,
			authentication_type = EXCLUDED.authentication_type,
			authentication_token = EXCLUDED.authentication_token,
			validation_token = EXCLUDED.validation_token,
			session_id = EXCLUDED.session_id,
			is_active = TRUE,
			updated_at = now()
	`, cfg.TenantID, cfg.PrincipalID, cfg.ID, cfg.URL, cfg.AuthenticationType, cfg.AuthenticationToken, cfg.ValidationToken, cfg.SessionID)
	if err != nil {
		return Config{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Config{}, err
	}
	saved, err := s.Get(ctx, cfg.TenantID, cfg.PrincipalID, cfg.ID)
	if err != nil {
		return Config{}, err
	}
	if saved == nil {
		return Config{}, errors.New("pushconfig: row not found after upsert")
	}
	return *saved, nil
}

func (s *PostgresStore) Get(ctx context.Context, tenantID, principalID, id string) (*Config, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT tenant_id, principal_id, id, url, authentication_type, authentication_token, validation_token, session_id, is_active, created_at, updated_at
		FROM push_notification_configs WHERE tenant_id=$1 AND principal_id=$2 AND id=$3
	`, tenantID, principalID, id)

	var cfg Config
	err := row.Scan(&cfg.TenantID, &cfg.PrincipalID, &cfg.ID, &cfg.URL, &cfg.AuthenticationType, &cfg.AuthenticationToken, &cfg.ValidationToken, &cfg.SessionID, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *PostgresStore) List(ctx context.Context, tenantID, principalID string) ([]Config, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tenant_id, principal_id, id, url, authentication_type, authentication_token, validation_token, session_id, is_active, created_at, updated_at
		FROM push_notification_configs WHERE tenant_id=$1 AND principal_id=$2 AND is_active=TRUE
	`, tenantID, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Config
	for rows.Next() {
		var cfg Config
		if err := rows.Scan(&cfg.TenantID, &cfg.PrincipalID, &cfg.ID, &cfg.URL, &cfg.AuthenticationType, &cfg.AuthenticationToken, &cfg.ValidationToken, &cfg.SessionID, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID, principalID, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE push_notification_configs SET is_active=FALSE, updated_at=now()
		WHERE tenant_id=$1 AND principal_id=$2 AND id=$3
	`, tenantID, principalID, id)
	return err
}
