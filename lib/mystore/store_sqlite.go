package mystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteStore persists each record as a JSON document in a single table keyed
// on (kind, uid). It is the durable stand-in for the browser's local storage:
// a document that no longer parses is reported as absent, not as an error.
type sqliteStore[T any] struct {
	db   *sql.DB
	kind string
}

func NewSqliteStore[T any](c context.Context, path string) (*sqliteStore[T], func(), error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening sqlite store %s: %s", path, err)
	}

	// Single writer works best for sqlite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(c, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error enabling WAL mode: %s", err)
	}

	if _, err := db.ExecContext(c, `CREATE TABLE IF NOT EXISTS records (
		kind TEXT NOT NULL,
		uid  TEXT NOT NULL,
		doc  TEXT NOT NULL,
		PRIMARY KEY (kind, uid)
	)`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error creating records table: %s", err)
	}

	return &sqliteStore[T]{
			db:   db,
			kind: kindOf[T](),
		}, func() {
			db.Close()
		}, nil
}

func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}
	return kind
}

type sqliteQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqliteStore[T]) queryer(c context.Context) sqliteQueryer {
	tx, ok := c.Value(ctxTransactionKey{}).(*sql.Tx)
	if ok {
		return tx
	}
	return s.db
}

func (s *sqliteStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	tx, err := s.db.BeginTx(c, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %s", err)
	}

	ctx := context.WithValue(c, ctxTransactionKey{}, tx)

	err = f(ctx)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Printf("error rolling back transaction: %s", rollbackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %s", err)
	}

	return nil
}

func (s *sqliteStore[T]) Put(c context.Context, uid string, value T) error {
	doc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error serializing %s with uid %s: %s", s.kind, uid, err)
	}

	_, err = s.queryer(c).ExecContext(c,
		`INSERT INTO records (kind, uid, doc) VALUES (?, ?, ?)
		 ON CONFLICT (kind, uid) DO UPDATE SET doc = excluded.doc`,
		s.kind, uid, string(doc))
	if err != nil {
		return fmt.Errorf("error storing %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *sqliteStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var result T
	var doc string

	err := s.queryer(c).QueryRowContext(c,
		`SELECT doc FROM records WHERE kind = ? AND uid = ?`, s.kind, uid).Scan(&doc)
	if err == sql.ErrNoRows {
		return result, false, nil
	}
	if err != nil {
		return result, false, fmt.Errorf("error fetching %s with uid %s: %s", s.kind, uid, err)
	}

	err = json.Unmarshal([]byte(doc), &result)
	if err != nil {
		// Corrupt document: treat as absent
		log.Printf("WARN: discarding corrupt %s with uid %s: %s", s.kind, uid, err)
		var zero T
		return zero, false, nil
	}

	return result, true, nil
}

func (s *sqliteStore[T]) List(c context.Context) ([]T, error) {
	rows, err := s.queryer(c).QueryContext(c,
		`SELECT uid, doc FROM records WHERE kind = ?`, s.kind)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %s", s.kind, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var uid, doc string
		if err := rows.Scan(&uid, &doc); err != nil {
			return nil, fmt.Errorf("error scanning %s: %s", s.kind, err)
		}

		var value T
		if err := json.Unmarshal([]byte(doc), &value); err != nil {
			// Corrupt document: skip
			log.Printf("WARN: discarding corrupt %s with uid %s: %s", s.kind, uid, err)
			continue
		}
		result = append(result, value)
	}

	return result, rows.Err()
}

func (s *sqliteStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	query := `SELECT uid, doc FROM records WHERE kind = ?`
	args := []any{s.kind}
	for _, f := range filters {
		if f.Compare != "=" {
			continue
		}
		query += fmt.Sprintf(" AND json_extract(doc, '$.%s') = ?", f.Field)
		args = append(args, f.Value)
	}
	if orderByField != "" {
		query += fmt.Sprintf(" ORDER BY json_extract(doc, '$.%s')", orderByField)
	}

	rows, err := s.queryer(c).QueryContext(c, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %s", s.kind, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var uid, doc string
		if err := rows.Scan(&uid, &doc); err != nil {
			return nil, fmt.Errorf("error scanning %s: %s", s.kind, err)
		}

		var value T
		if err := json.Unmarshal([]byte(doc), &value); err != nil {
			log.Printf("WARN: discarding corrupt %s with uid %s: %s", s.kind, uid, err)
			continue
		}
		result = append(result, value)
	}

	return result, rows.Err()
}
