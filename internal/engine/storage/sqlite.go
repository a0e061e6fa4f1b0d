// Package storage keeps an optional local archive of every result page the
// service returned, so past searches can be exported after the fact.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rendis/restfinder/internal/model"
)

// Archive is a SQLite table of results, unique per (item identity, search key).
type Archive struct {
	db *sql.DB
	mu sync.Mutex
}

// ArchivedResult is one stored row.
type ArchivedResult struct {
	model.ResultItem
	Criteria  model.SearchCriteria
	SearchKey string
	CreatedAt time.Time
}

func NewArchive(dbPath string) (*Archive, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		address TEXT,
		rating REAL,
		review_count INTEGER,
		phone TEXT,
		map_url TEXT,
		identity TEXT NOT NULL,
		city TEXT NOT NULL,
		district TEXT,
		food_type TEXT,
		restaurant_name TEXT,
		min_rating REAL,
		search_key TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(identity, search_key)
	);
	CREATE INDEX IF NOT EXISTS idx_results_search_key ON results(search_key);
	CREATE INDEX IF NOT EXISTS idx_results_rating ON results(rating);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SearchKey identifies the search a row came from.
func SearchKey(c model.SearchCriteria) string {
	return strings.Join([]string{
		c.City, c.District, c.FoodCategory, c.FreeTextName, model.FormatRating(c.MinRating),
	}, "|")
}

// identity is the map URL, or name and address for items without one.
func identity(it model.ResultItem) string {
	if it.MapURL != "" {
		return it.MapURL
	}
	return it.Name + "|" + it.Address
}

// SaveResults stores items for criteria and returns how many rows were new.
func (a *Archive) SaveResults(criteria model.SearchCriteria, items []model.ResultItem) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning tx: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO results
		(name, address, rating, review_count, phone, map_url, identity,
		 city, district, food_type, restaurant_name, min_rating, search_key)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing stmt: %w", err)
	}
	defer stmt.Close()

	key := SearchKey(criteria)
	inserted := 0
	for _, it := range items {
		var rating sql.NullFloat64
		if it.Rating != nil {
			rating = sql.NullFloat64{Float64: *it.Rating, Valid: true}
		}
		var reviews sql.NullInt64
		if it.ReviewCount != nil {
			reviews = sql.NullInt64{Int64: int64(*it.ReviewCount), Valid: true}
		}

		res, err := stmt.Exec(
			it.Name, it.Address, rating, reviews, it.Phone, it.MapURL, identity(it),
			criteria.City, criteria.District, criteria.FoodCategory, criteria.FreeTextName,
			criteria.MinRating, key,
		)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing tx: %w", err)
	}

	return inserted, nil
}

func (a *Archive) Count() (int, error) {
	var count int
	err := a.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	return count, err
}

// LoadAll returns every row, best rated first.
func (a *Archive) LoadAll() ([]ArchivedResult, error) {
	rows, err := a.db.Query(`
		SELECT name, address, rating, review_count, phone, map_url,
		       city, district, food_type, restaurant_name, min_rating, search_key, created_at
		FROM results ORDER BY rating IS NULL, rating DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []ArchivedResult
	for rows.Next() {
		var (
			r       ArchivedResult
			rating  sql.NullFloat64
			reviews sql.NullInt64
			created sql.NullString
		)
		err := rows.Scan(
			&r.Name, &r.Address, &rating, &reviews, &r.Phone, &r.MapURL,
			&r.Criteria.City, &r.Criteria.District, &r.Criteria.FoodCategory, &r.Criteria.FreeTextName,
			&r.Criteria.MinRating, &r.SearchKey, &created,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		if reviews.Valid {
			v := int(reviews.Int64)
			r.ReviewCount = &v
		}
		r.CreatedAt = parseTimestamp(created.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

// The driver may hand DATETIME columns back as text or as time.Time
// formatted by database/sql.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (a *Archive) Close() error {
	return a.db.Close()
}
