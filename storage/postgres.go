package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"niche-research/models"
	"niche-research/utils"
)

// PostgresStore persists research runs and their scored products to
// PostgreSQL. It serves both the pipeline write path and the API read path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	ping := utils.RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		Logger:      logger,
	}
	if err := ping.Do("postgres ping", db.Ping); err != nil {
		return nil, err
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS research_runs (
			id             VARCHAR(36) PRIMARY KEY,
			niche          TEXT        NOT NULL,
			status         VARCHAR(20) NOT NULL,
			products_found INT         NOT NULL DEFAULT 0,
			error_log      TEXT        NOT NULL DEFAULT '',
			trends         JSONB       NOT NULL DEFAULT '{}',
			started_at     TIMESTAMPTZ NOT NULL,
			completed_at   TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS products (
			id                  SERIAL PRIMARY KEY,
			run_id              VARCHAR(36) NOT NULL REFERENCES research_runs(id) ON DELETE CASCADE,
			platform            VARCHAR(50) NOT NULL,
			title               TEXT        NOT NULL,
			url                 TEXT        NOT NULL,
			price               NUMERIC(10,2),
			mrp                 NUMERIC(10,2),
			rating              NUMERIC(4,2),
			review_count        INT,
			image_url           TEXT        NOT NULL DEFAULT '',
			stock_status        VARCHAR(20) NOT NULL,
			badges              JSONB       NOT NULL DEFAULT '{}',
			asin                VARCHAR(20) NOT NULL DEFAULT '',
			score               NUMERIC(5,1) NOT NULL,
			commission_estimate NUMERIC(10,2) NOT NULL DEFAULT 0,
			discount_pct        NUMERIC(5,1),
			trend_bonus_applied BOOLEAN     NOT NULL DEFAULT FALSE,
			scraped_at          TIMESTAMPTZ NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started      ON research_runs(started_at);
		CREATE INDEX IF NOT EXISTS idx_products_run      ON products(run_id);
		CREATE INDEX IF NOT EXISTS idx_products_score    ON products(score);
		CREATE INDEX IF NOT EXISTS idx_products_platform ON products(platform);
	`)
	return err
}

// CreateRun inserts a new run in the running state.
func (ps *PostgresStore) CreateRun(run *models.ResearchRun) error {
	_, err := ps.db.Exec(`
		INSERT INTO research_runs (id, niche, status, started_at)
		VALUES ($1, $2, $3, $4)
	`, run.ID, run.Niche, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("postgres: create run: %w", err)
	}
	return nil
}

// SaveListing inserts one scored product under a run.
func (ps *PostgresStore) SaveListing(runID string, l *models.ScoredListing) error {
	badges, err := json.Marshal(l.Badges)
	if err != nil {
		return fmt.Errorf("postgres: marshal badges: %w", err)
	}

	_, err = ps.db.Exec(`
		INSERT INTO products (
			run_id, platform, title, url, price, mrp, rating, review_count,
			image_url, stock_status, badges, asin,
			score, commission_estimate, discount_pct, trend_bonus_applied, scraped_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, runID, l.Platform, l.Title, l.URL, l.Price, l.MRP, l.Rating, l.ReviewCount,
		l.ImageURL, l.StockStatus, badges, l.ASIN,
		l.Score, l.CommissionEstimate, l.DiscountPct, l.TrendBonusApplied, l.ScrapedAt)
	if err != nil {
		return fmt.Errorf("postgres: save listing: %w", err)
	}
	return nil
}

// CompleteRun records the terminal state of a run along with its trend
// snapshot and error log.
func (ps *PostgresStore) CompleteRun(run *models.ResearchRun) error {
	trends, err := json.Marshal(run.Trends)
	if err != nil {
		return fmt.Errorf("postgres: marshal trends: %w", err)
	}

	_, err = ps.db.Exec(`
		UPDATE research_runs
		SET status = $2, products_found = $3, error_log = $4, trends = $5, completed_at = $6
		WHERE id = $1
	`, run.ID, run.Status, run.ProductsFound, run.ErrorLog, trends, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("postgres: complete run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (ps *PostgresStore) ListRuns(limit int) ([]*models.ResearchRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := ps.db.Query(`
		SELECT id, niche, status, products_found, error_log, trends, started_at, completed_at
		FROM research_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ResearchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id, or sql.ErrNoRows when absent.
func (ps *PostgresStore) GetRun(id string) (*models.ResearchRun, error) {
	row := ps.db.QueryRow(`
		SELECT id, niche, status, products_found, error_log, trends, started_at, completed_at
		FROM research_runs
		WHERE id = $1
	`, id)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.ResearchRun, error) {
	run := &models.ResearchRun{}
	var (
		trends      []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&run.ID, &run.Niche, &run.Status, &run.ProductsFound,
		&run.ErrorLog, &trends, &run.StartedAt, &completedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("postgres: scan run: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if len(trends) > 0 {
		if err := json.Unmarshal(trends, &run.Trends); err != nil {
			return nil, fmt.Errorf("postgres: decode trends: %w", err)
		}
	}
	return run, nil
}

// ListingsForRun returns a run's scored products, best score first.
func (ps *PostgresStore) ListingsForRun(id string) ([]*models.ScoredListing, error) {
	rows, err := ps.db.Query(`
		SELECT platform, title, url, price, mrp, rating, review_count,
		       image_url, stock_status, badges, asin,
		       score, commission_estimate, discount_pct, trend_bonus_applied, scraped_at
		FROM products
		WHERE run_id = $1
		ORDER BY score DESC, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: listings for run: %w", err)
	}
	defer rows.Close()

	var listings []*models.ScoredListing
	for rows.Next() {
		l := &models.ScoredListing{Excluded: models.ExcludeNone}
		var (
			price, mrp, rating, discount sql.NullFloat64
			reviews                      sql.NullInt64
			badges                       []byte
		)
		if err := rows.Scan(
			&l.Platform, &l.Title, &l.URL, &price, &mrp, &rating, &reviews,
			&l.ImageURL, &l.StockStatus, &badges, &l.ASIN,
			&l.Score, &l.CommissionEstimate, &discount, &l.TrendBonusApplied, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		if price.Valid {
			l.Price = models.Float64(price.Float64)
		}
		if mrp.Valid {
			l.MRP = models.Float64(mrp.Float64)
		}
		if rating.Valid {
			l.Rating = models.Float64(rating.Float64)
		}
		if reviews.Valid {
			l.ReviewCount = models.Int(int(reviews.Int64))
		}
		if discount.Valid {
			l.DiscountPct = models.Float64(discount.Float64)
		}
		if len(badges) > 0 {
			if err := json.Unmarshal(badges, &l.Badges); err != nil {
				return nil, fmt.Errorf("postgres: decode badges: %w", err)
			}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
