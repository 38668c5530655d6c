// Package ioworkload reads and writes workload files. A workload file is a
// SQLite database with collections, candidate designs and weighted
// operations.
package ioworkload

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gnames/lnsdesign/pkg/design"
	"github.com/gnames/lnsdesign/pkg/workload"
	_ "modernc.org/sqlite"
)

const ddl = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	doc_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS candidates (
	collection TEXT NOT NULL,
	shard_key TEXT NOT NULL DEFAULT '',
	index_keys TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS operations (
	collection TEXT NOT NULL,
	kind TEXT NOT NULL,
	fields TEXT NOT NULL DEFAULT '',
	weight REAL NOT NULL DEFAULT 1
);
`

// Load reads a workload file. Every collection must have at least one
// candidate design.
func Load(ctx context.Context, path string) (*workload.Workload, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, FileNotFoundError(path, err)
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res := workload.New()
	if err = loadCollections(ctx, db, res); err != nil {
		return nil, err
	}
	if err = loadCandidates(ctx, db, res); err != nil {
		return nil, err
	}
	if err = loadOperations(ctx, db, res); err != nil {
		return nil, err
	}

	for _, v := range res.Names() {
		if len(res.Candidates.For(v)) == 0 {
			return nil, NoCandidatesError(v)
		}
	}

	slog.Info("Loaded workload",
		"path", path,
		"collections", humanize.Comma(int64(len(res.Collections))),
		"operations", humanize.Comma(int64(len(res.Operations))),
	)
	return res, nil
}

// Write creates a workload file at path, replacing an existing one.
func Write(ctx context.Context, path string, w *workload.Workload) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return WriteError(path, err)
	}

	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, ddl); err != nil {
		return WriteError(path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return WriteError(path, err)
	}
	defer tx.Rollback()

	if err = writeRows(ctx, tx, w); err != nil {
		return WriteError(path, err)
	}

	if err = tx.Commit(); err != nil {
		return WriteError(path, err)
	}
	return nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, OpenError(path, err)
	}
	return db, nil
}

func loadCollections(
	ctx context.Context,
	db *sql.DB,
	w *workload.Workload,
) error {
	q := "SELECT name, doc_count FROM collections ORDER BY name"
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return ReadError("collections", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c workload.Collection
		if err = rows.Scan(&c.Name, &c.DocCount); err != nil {
			return ReadError("collections", err)
		}
		w.Collections[c.Name] = c
	}
	if err = rows.Err(); err != nil {
		return ReadError("collections", err)
	}
	return nil
}

func loadCandidates(
	ctx context.Context,
	db *sql.DB,
	w *workload.Workload,
) error {
	q := "SELECT collection, shard_key, index_keys FROM candidates ORDER BY rowid"
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return ReadError("candidates", err)
	}
	defer rows.Close()

	for rows.Next() {
		var col, shard, index string
		if err = rows.Scan(&col, &shard, &index); err != nil {
			return ReadError("candidates", err)
		}
		if _, ok := w.Collections[col]; !ok {
			err = fmt.Errorf("unknown collection %q", col)
			return ReadError("candidates", err)
		}
		w.Candidates.Add(col, design.Choice{
			ShardKey: strings.TrimSpace(shard),
			Index:    splitKeys(index),
		})
	}
	if err = rows.Err(); err != nil {
		return ReadError("candidates", err)
	}
	return nil
}

func loadOperations(
	ctx context.Context,
	db *sql.DB,
	w *workload.Workload,
) error {
	q := "SELECT collection, kind, fields, weight FROM operations ORDER BY rowid"
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return ReadError("operations", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op workload.Operation
		var kind, fields string
		err = rows.Scan(&op.Collection, &kind, &fields, &op.Weight)
		if err != nil {
			return ReadError("operations", err)
		}
		op.Kind = workload.OpKind(strings.ToLower(strings.TrimSpace(kind)))
		if !op.Kind.Valid() {
			err = fmt.Errorf("unknown operation kind %q", kind)
			return ReadError("operations", err)
		}
		if _, ok := w.Collections[op.Collection]; !ok {
			err = fmt.Errorf("unknown collection %q", op.Collection)
			return ReadError("operations", err)
		}
		op.Fields = splitKeys(fields)
		w.Operations = append(w.Operations, op)
	}
	if err = rows.Err(); err != nil {
		return ReadError("operations", err)
	}
	return nil
}

func writeRows(ctx context.Context, tx *sql.Tx, w *workload.Workload) error {
	for _, name := range w.Names() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO collections (name, doc_count) VALUES (?, ?)",
			name, w.Collections[name].DocCount,
		)
		if err != nil {
			return err
		}
		for _, c := range w.Candidates.For(name) {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO candidates (collection, shard_key, index_keys)
				VALUES (?, ?, ?)`,
				name, c.ShardKey, strings.Join(c.Index, ","),
			)
			if err != nil {
				return err
			}
		}
	}

	for _, op := range w.Operations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO operations (collection, kind, fields, weight)
			VALUES (?, ?, ?, ?)`,
			op.Collection, string(op.Kind), strings.Join(op.Fields, ","),
			op.Weight,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func splitKeys(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}
