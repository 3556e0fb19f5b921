package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"homefix/internal/model"
	"homefix/internal/outcome"
)

const maxCommonTips = 3

// SQLiteStore is a model.OutcomeStore persisting outcomes in SQLite.
// Metrics are aggregated from recorded outcomes and fall back to the
// baseline when an issue type has none.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	// one writer; concurrent Record calls queue on the pool
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return err
	}

	schema := `
CREATE TABLE IF NOT EXISTS outcomes (
  outcome_id TEXT PRIMARY KEY,
  diagnosis_id TEXT NOT NULL,
  issue_type TEXT NOT NULL DEFAULT '',
  issue_key TEXT NOT NULL DEFAULT '',
  outcome TEXT NOT NULL,
  actual_time_minutes REAL,
  actual_cost REAL,
  difficulty_rating INTEGER,
  after_photo_count INTEGER NOT NULL DEFAULT 0,
  tips TEXT NOT NULL DEFAULT '',
  would_recommend_diy INTEGER,
  submitted_at_unix INTEGER NOT NULL
);

-- metrics are always scoped by issue type
CREATE INDEX IF NOT EXISTS idx_outcomes_issue_key ON outcomes(issue_key, submitted_at_unix);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Record(ctx context.Context, rec model.OutcomeRecord) error {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("outcome id is required")
	}

	submitted := rec.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}

	_, err = db.ExecContext(
		ctx,
		`INSERT INTO outcomes(outcome_id, diagnosis_id, issue_type, issue_key, outcome, actual_time_minutes,
		   actual_cost, difficulty_rating, after_photo_count, tips, would_recommend_diy, submitted_at_unix)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.DiagnosisID,
		rec.IssueType,
		issueKey(rec.IssueType),
		string(rec.Outcome),
		nullableFloat(rec.ActualTimeMinutes),
		nullableFloat(rec.ActualCost),
		nullableInt(rec.DifficultyRating),
		rec.AfterPhotoCount,
		rec.Tips,
		nullableBool(rec.WouldRecommendDIY),
		submitted.Unix(),
	)
	return err
}

// MetricsFor aggregates outcomes for issueType. An empty issue type
// aggregates everything.
func (s *SQLiteStore) MetricsFor(ctx context.Context, issueType string) (model.SuccessMetrics, error) {
	db, err := s.ensureDB(ctx)
	if err != nil {
		return model.SuccessMetrics{}, err
	}
	key := issueKey(issueType)

	var (
		total, successes, recommends, answered int
		avgTime, avgCost                       sql.NullFloat64
	)
	err = db.QueryRowContext(
		ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = 'success' THEN 1 ELSE 0 END), 0),
		        AVG(actual_time_minutes),
		        AVG(actual_cost),
		        COALESCE(SUM(CASE WHEN would_recommend_diy = 1 THEN 1 ELSE 0 END), 0),
		        COUNT(would_recommend_diy)
		   FROM outcomes
		  WHERE (? = '' OR issue_key = ?)`,
		key, key,
	).Scan(&total, &successes, &avgTime, &avgCost, &recommends, &answered)
	if err != nil {
		return model.SuccessMetrics{}, err
	}
	if total == 0 {
		return outcome.BaselineMetrics(), nil
	}

	metrics := model.SuccessMetrics{
		TotalAttempts: total,
		SuccessRate:   percent(successes, total),
		CommonTips:    []string{},
	}
	if avgTime.Valid {
		metrics.AvgTimeMinutes = math.Round(avgTime.Float64*10) / 10
	}
	if avgCost.Valid {
		metrics.AvgCost = math.Round(avgCost.Float64*100) / 100
	}
	if answered > 0 {
		metrics.DIYRecommendationRate = percent(recommends, answered)
	}

	rows, err := db.QueryContext(
		ctx,
		`SELECT tips FROM outcomes
		  WHERE (? = '' OR issue_key = ?) AND tips != ''
		  ORDER BY submitted_at_unix DESC, rowid DESC
		  LIMIT ?`,
		key, key, maxCommonTips,
	)
	if err != nil {
		return model.SuccessMetrics{}, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var tip string
		if err := rows.Scan(&tip); err != nil {
			return model.SuccessMetrics{}, err
		}
		metrics.CommonTips = append(metrics.CommonTips, tip)
	}
	if err := rows.Err(); err != nil {
		return model.SuccessMetrics{}, err
	}
	return metrics, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("sqlite db not initialized")
	}
	return s.db, nil
}

func issueKey(issueType string) string {
	return strings.ToLower(strings.TrimSpace(issueType))
}

func percent(n, of int) int {
	if of <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(of)))
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}
