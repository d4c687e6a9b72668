package community

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const approvedAverageSQL = `
	SELECT COALESCE(AVG(credibility_rating), 0)::float8, COUNT(*)
	FROM reviews
	WHERE target_type = 'article'
	  AND article_id = $1
	  AND status = 'approved'
`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres averages approved reader reviews' credibility ratings
type Postgres struct {
	db   rowQuerier
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a ping
func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{db: pool, pool: pool}, nil
}

// Score returns the rounded mean rating of approved reviews
func (p *Postgres) Score(ctx context.Context, subjectID string) (int, bool, error) {
	var avg float64
	var count int64
	if err := p.db.QueryRow(ctx, approvedAverageSQL, subjectID).Scan(&avg, &count); err != nil {
		return DefaultScore, false, fmt.Errorf("query review average: %w", err)
	}
	if count == 0 {
		return DefaultScore, false, nil
	}

	score := int(math.Round(avg))
	return max(0, min(100, score)), true, nil
}

// Close releases the pool
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
