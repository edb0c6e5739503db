package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"edulingua/errors"
)

const (
	insertQuery = `
        INSERT INTO jobs (
            id, title, type, status, progress, step,
            source_language, target_languages, file_size,
            error, result, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            type = excluded.type,
            status = excluded.status,
            progress = excluded.progress,
            step = excluded.step,
            source_language = excluded.source_language,
            target_languages = excluded.target_languages,
            file_size = excluded.file_size,
            error = excluded.error,
            result = excluded.result,
            updated_at = excluded.updated_at
    `

	getQuery = `
        SELECT id, title, type, status, progress, step,
               source_language, target_languages, file_size,
               error, result, created_at, updated_at
        FROM jobs WHERE id = ?
    `

	getRecentQuery = `
        SELECT id, title, type, status, progress, step,
               source_language, target_languages, file_size,
               error, result, created_at, updated_at
        FROM jobs
        ORDER BY created_at DESC
        LIMIT ?
    `
)

type PreparedStatements struct {
	insert    *sql.Stmt
	get       *sql.Stmt
	getRecent *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.insert, err = db.PrepareContext(ctx, insertQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare insert statement")
	}

	if stmts.get, err = db.PrepareContext(ctx, getQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare get statement")
	}

	if stmts.getRecent, err = db.PrepareContext(ctx, getRecentQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare getRecent statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	statements := [...]*sql.Stmt{
		stmts.insert,
		stmts.get,
		stmts.getRecent,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}
