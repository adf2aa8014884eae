package db

import (
	"context"
	"database/sql"
	"errors"
)

const createTable = `
INSERT INTO tables (name, join_code)
VALUES (?, ?)
RETURNING id, name, join_code, status, created_at
`

type CreateTableParams struct {
	Name     string
	JoinCode string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRowContext(ctx, createTable, arg.Name, arg.JoinCode)
	var t Table
	err := row.Scan(&t.ID, &t.Name, &t.JoinCode, &t.Status, &t.CreatedAt)
	return t, err
}

const getTableByJoinCode = `
SELECT id, name, join_code, status, created_at
FROM tables
WHERE join_code = ? AND status = 'active'
`

// GetTableByJoinCode resolves a join code to its table. Inactive tables are
// treated the same as unknown codes: ErrNotFound.
func (q *Queries) GetTableByJoinCode(ctx context.Context, joinCode string) (Table, error) {
	row := q.db.QueryRowContext(ctx, getTableByJoinCode, joinCode)
	var t Table
	err := row.Scan(&t.ID, &t.Name, &t.JoinCode, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	return t, err
}

const listTables = `
SELECT id, name, join_code, status, created_at
FROM tables
ORDER BY id ASC
`

func (q *Queries) ListTables(ctx context.Context) ([]Table, error) {
	rows, err := q.db.QueryContext(ctx, listTables)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.JoinCode, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const setTableStatus = `
UPDATE tables SET status = ? WHERE id = ?
`

type SetTableStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) SetTableStatus(ctx context.Context, arg SetTableStatusParams) error {
	result, err := q.db.ExecContext(ctx, setTableStatus, arg.Status, arg.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
