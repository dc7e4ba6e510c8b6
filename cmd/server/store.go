package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var errJobNotFound = errors.New("job not found")

type jobStatus string

const (
	statusPending jobStatus = "pending"
	statusRunning jobStatus = "running"
	statusDone    jobStatus = "done"
	statusFailed  jobStatus = "failed"
)

type job struct {
	ID             string     `json:"id"`
	Resolution     int        `json:"resolution"`
	CRe            float64    `json:"c_re"`
	CIm            float64    `json:"c_im"`
	Bound          float64    `json:"bound"`
	EscapeRadius   float64    `json:"escape_radius"`
	MaxIterations  int        `json:"max_iterations"`
	Status         jobStatus  `json:"status"`
	EscapeFraction *float64   `json:"escape_fraction,omitempty"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// jobStore persists evaluation jobs in sqlite.
type jobStore struct {
	db *sql.DB
}

func openStore(path string) (*jobStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS jobs (
		id              TEXT PRIMARY KEY,
		resolution      INTEGER NOT NULL,
		c_re            REAL NOT NULL,
		c_im            REAL NOT NULL,
		bound           REAL NOT NULL,
		escape_radius   REAL NOT NULL,
		max_iterations  INTEGER NOT NULL,
		status          TEXT NOT NULL,
		escape_fraction REAL,
		error           TEXT NOT NULL DEFAULT '',
		created_at      INTEGER NOT NULL,
		completed_at    INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create jobs table: %w", err)
	}

	return &jobStore{db: db}, nil
}

func (s *jobStore) Close() error {
	return s.db.Close()
}

func (s *jobStore) Create(j *job) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (id, resolution, c_re, c_im, bound, escape_radius, max_iterations, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Resolution, j.CRe, j.CIm, j.Bound, j.EscapeRadius, j.MaxIterations, j.Status, j.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *jobStore) Get(id string) (*job, error) {
	row := s.db.QueryRow(
		`SELECT id, resolution, c_re, c_im, bound, escape_radius, max_iterations,
		        status, escape_fraction, error, created_at, completed_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (s *jobStore) List() ([]*job, error) {
	rows, err := s.db.Query(
		`SELECT id, resolution, c_re, c_im, bound, escape_radius, max_iterations,
		        status, escape_fraction, error, created_at, completed_at
		 FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *jobStore) SetRunning(id string) error {
	return s.update(`UPDATE jobs SET status = ? WHERE id = ?`, statusRunning, id)
}

func (s *jobStore) SetDone(id string, fraction float64) error {
	return s.update(
		`UPDATE jobs SET status = ?, escape_fraction = ?, completed_at = ? WHERE id = ?`,
		statusDone, fraction, time.Now().Unix(), id,
	)
}

func (s *jobStore) SetFailed(id, msg string) error {
	return s.update(
		`UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		statusFailed, msg, time.Now().Unix(), id,
	)
}

func (s *jobStore) update(query string, args ...any) error {
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errJobNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*job, error) {
	var (
		j         job
		fraction  sql.NullFloat64
		created   int64
		completed sql.NullInt64
	)
	err := row.Scan(&j.ID, &j.Resolution, &j.CRe, &j.CIm, &j.Bound, &j.EscapeRadius,
		&j.MaxIterations, &j.Status, &fraction, &j.Error, &created, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	if fraction.Valid {
		j.EscapeFraction = &fraction.Float64
	}
	j.CreatedAt = time.Unix(created, 0).UTC()
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		j.CompletedAt = &t
	}
	return &j, nil
}
