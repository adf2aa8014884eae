package db

import (
	"context"
	"database/sql"
	"errors"
)

const createUser = `
INSERT INTO users (nickname, role, table_id)
VALUES (?, ?, ?)
RETURNING id, nickname, level, points, role, table_id, created_at
`

type CreateUserParams struct {
	Nickname string
	Role     string
	TableID  int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.Nickname, arg.Role, arg.TableID)
	var u User
	err := row.Scan(&u.ID, &u.Nickname, &u.Level, &u.Points, &u.Role, &u.TableID, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, nickname, level, points, role, table_id, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Nickname, &u.Level, &u.Points, &u.Role, &u.TableID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

const updateUserRoleByNickname = `
UPDATE users SET role = ? WHERE nickname = ?
`

type UpdateUserRoleByNicknameParams struct {
	Role     string
	Nickname string
}

// UpdateUserRoleByNickname changes the role of every user with the given
// nickname and reports how many rows were touched. Nicknames are not unique.
func (q *Queries) UpdateUserRoleByNickname(ctx context.Context, arg UpdateUserRoleByNicknameParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUserRoleByNickname, arg.Role, arg.Nickname)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
