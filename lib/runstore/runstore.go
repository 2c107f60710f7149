// Package runstore persists retrieval run output: one row per run plus the
// flat record sequence it delivered.
package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"tweetwatch/lib/tweet"
)

//go:embed schema.sql
var Schema string

var tracer = otel.Tracer("runstore")

type Config struct {
	// "sqlite" for a local file, "libsql" for a remote-capable database
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

func (config Config) OpenDB() (*sql.DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}
	path := config.Path
	if path == "" {
		path = ":memory:"
	}
	if driver == "libsql" {
		path = fmt.Sprintf("file:%s", path)
	}
	return sql.Open(driver, path)
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Run is one persisted run's header row.
type Run struct {
	ID           int64
	Url          string
	RequestDate  int64
	Completed    bool
	ErrorCode    string
	ErrorMessage string
}

// SaveRun writes the full record sequence of one run. The run header is
// lifted out of the metadata record; records keep their original order.
func (s *Store) SaveRun(ctx context.Context, records []map[string]string) (int64, error) {
	ctx, span := tracer.Start(ctx, "SaveRun")
	defer span.End()

	metadata := map[string]string{}
	for _, record := range records {
		if record["map_type"] == tweet.MapTypeMetadata {
			metadata = record
			break
		}
	}
	requestDate, _ := strconv.ParseInt(metadata["request_date"], 10, 64)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (url, request_date, completed, error_code, error_message)
		 VALUES (?, ?, ?, ?, ?)`,
		metadata["url"],
		requestDate,
		metadata["completed"] == "true",
		metadata["error_code"],
		metadata["error_message"],
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert run")
		return 0, err
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for position, record := range records {
		attrs, err := json.Marshal(record)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_records (run_id, position, map_type, attrs)
			 VALUES (?, ?, ?, ?)`,
			runID, position, record["map_type"], string(attrs),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert record")
			return 0, err
		}
	}

	return runID, tx.Commit()
}

func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, request_date, completed, error_code, error_message
		 FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(&run.ID, &run.Url, &run.RequestDate, &run.Completed, &run.ErrorCode, &run.ErrorMessage)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRecords returns one run's record sequence in its original order.
func (s *Store) GetRecords(ctx context.Context, runID int64) ([]map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attrs FROM run_records WHERE run_id = ? ORDER BY position`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []map[string]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		record := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
