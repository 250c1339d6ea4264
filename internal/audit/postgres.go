package audit

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"github.com/quartzmkt/resolver-core/pkg/types"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage. The caller is
// responsible for having applied the audit_events migration.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-audit-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{db: db, logger: cfg.Logger}, nil
}

// RecordResolve stores a Resolver decision in PostgreSQL.
func (p *PostgresStorage) RecordResolve(ctx context.Context, series string, result types.ResolveResult) error {
	event := newEvent(series)
	event.Resolve = &result

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal resolve result: %w", err)
	}

	status := "freeze"
	if result.Ok() {
		status = "ok"
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, series, kind, status, occurred_at, payload)
		 VALUES ($1, $2, 'resolve', $3, $4, $5)`,
		event.ID, series, status, event.OccurredAt, payload)
	if err != nil {
		return fmt.Errorf("insert resolve event: %w", err)
	}

	p.logger.Debug("resolve-event-stored", zap.String("id", event.ID), zap.String("series", series), zap.String("status", status))
	return nil
}

// RecordAction stores a Switch Controller action in PostgreSQL.
func (p *PostgresStorage) RecordAction(ctx context.Context, series string, action types.SwitchAction) error {
	event := newEvent(series)
	event.Action = &action

	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal switch action: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, series, kind, status, occurred_at, payload)
		 VALUES ($1, $2, 'switch_action', $3, $4, $5)`,
		event.ID, series, action.Action, event.OccurredAt, payload)
	if err != nil {
		return fmt.Errorf("insert action event: %w", err)
	}

	p.logger.Debug("action-event-stored", zap.String("id", event.ID), zap.String("series", series), zap.String("action", action.Action))
	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-audit-storage")
	return p.db.Close()
}
