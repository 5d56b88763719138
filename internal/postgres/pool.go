package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/abzsd/CareAgents/internal/logger"
)

// ErrConnection is returned when the pool cannot be established
// or is used before Open succeeds.
var ErrConnection = errors.New("postgres: connection unavailable")

// Config holds PostgreSQL connection settings.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	MaxOpenConns   int
	MaxIdleConns   int
	CommandTimeout time.Duration
}

// DSN builds the connection string for the pgx stdlib driver.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Pool owns a single lazily-opened *sqlx.DB. First open is guarded by a
// mutex so concurrent callers never create two underlying pools.
type Pool struct {
	mu  sync.Mutex
	cfg Config
	db  *sqlx.DB
}

// New creates an unopened pool with the given config. Zero limits fall
// back to 2 idle / 20 open connections and a 60s command timeout.
func New(cfg Config) *Pool {
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 2
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 20
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 60 * time.Second
	}
	return &Pool{cfg: cfg}
}

// Open connects to PostgreSQL if not already connected and returns the
// handle. Idempotent: a second call returns the existing handle.
func (p *Pool) Open(ctx context.Context) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db, nil
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", p.cfg.DSN())
	if err != nil {
		logger.Log.Errorw("failed to connect to PostgreSQL", "host", p.cfg.Host, "database", p.cfg.Database, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	db.SetMaxOpenConns(p.cfg.MaxOpenConns)
	db.SetMaxIdleConns(p.cfg.MaxIdleConns)

	p.db = db
	logger.Log.Infow("PostgreSQL pool opened", "host", p.cfg.Host, "database", p.cfg.Database, "max_open_conns", p.cfg.MaxOpenConns)
	return p.db, nil
}

// DB returns the open handle or ErrConnection when the pool was never opened.
func (p *Pool) DB() (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil, ErrConnection
	}
	return p.db, nil
}

// Ping verifies the pool can reach the database.
func (p *Pool) Ping(ctx context.Context) error {
	db, err := p.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.cfg.CommandTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// CommandContext derives a context carrying the configured command timeout.
func (p *Pool) CommandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.cfg.CommandTimeout)
}

// Close drains and disposes all connections. Safe to call when never
// opened; the pool can be reopened afterwards.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
