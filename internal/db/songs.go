package db

import (
	"context"
	"database/sql"
	"errors"
)

const createSongRequest = `
INSERT INTO song_requests (video_id, title, duration_seconds, user_id, table_id, status)
VALUES (?, ?, ?, ?, ?, 'pending')
RETURNING id, video_id, title, duration_seconds, user_id, table_id, status, created_at
`

type CreateSongRequestParams struct {
	VideoID         string
	Title           string
	DurationSeconds sql.NullInt64
	UserID          int64
	TableID         int64
}

func (q *Queries) CreateSongRequest(ctx context.Context, arg CreateSongRequestParams) (SongRequest, error) {
	row := q.db.QueryRowContext(ctx, createSongRequest,
		arg.VideoID, arg.Title, arg.DurationSeconds, arg.UserID, arg.TableID)
	return scanSongRequest(row)
}

const getSongRequestByID = `
SELECT id, video_id, title, duration_seconds, user_id, table_id, status, created_at
FROM song_requests
WHERE id = ?
`

func (q *Queries) GetSongRequestByID(ctx context.Context, id int64) (SongRequest, error) {
	row := q.db.QueryRowContext(ctx, getSongRequestByID, id)
	sr, err := scanSongRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SongRequest{}, ErrNotFound
	}
	return sr, err
}

const transitionSongRequest = `
UPDATE song_requests
SET status = ?
WHERE id = ? AND status = 'pending'
RETURNING id, video_id, title, duration_seconds, user_id, table_id, status, created_at
`

type TransitionSongRequestParams struct {
	Status string
	ID     int64
}

// TransitionSongRequest moves a pending request to approved or rejected in a
// single conditional update, so concurrent moderation of the same id settles
// on exactly one decision. Returns ErrConflict when the row exists but is no
// longer pending, ErrNotFound when there is no such row.
func (q *Queries) TransitionSongRequest(ctx context.Context, arg TransitionSongRequestParams) (SongRequest, error) {
	row := q.db.QueryRowContext(ctx, transitionSongRequest, arg.Status, arg.ID)
	sr, err := scanSongRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, probeErr := q.GetSongRequestByID(ctx, arg.ID); probeErr != nil {
			return SongRequest{}, probeErr
		}
		return SongRequest{}, ErrConflict
	}
	return sr, err
}

const markSongPerformed = `
UPDATE song_requests
SET status = 'performed'
WHERE id = ? AND status = 'approved'
RETURNING id, video_id, title, duration_seconds, user_id, table_id, status, created_at
`

// MarkSongPerformed closes out an approved request. Same guard discipline as
// TransitionSongRequest: only approved rows may become performed.
func (q *Queries) MarkSongPerformed(ctx context.Context, id int64) (SongRequest, error) {
	row := q.db.QueryRowContext(ctx, markSongPerformed, id)
	sr, err := scanSongRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, probeErr := q.GetSongRequestByID(ctx, id); probeErr != nil {
			return SongRequest{}, probeErr
		}
		return SongRequest{}, ErrConflict
	}
	return sr, err
}

const getSongRequestsByTableID = `
SELECT id, video_id, title, duration_seconds, user_id, table_id, status, created_at
FROM song_requests
WHERE table_id = ?
ORDER BY id ASC
`

// GetSongRequestsByTableID returns the full queue of a table in creation
// order. This is the authoritative read clients use to reconcile after a
// reconnect.
func (q *Queries) GetSongRequestsByTableID(ctx context.Context, tableID int64) ([]SongRequest, error) {
	rows, err := q.db.QueryContext(ctx, getSongRequestsByTableID, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SongRequest
	for rows.Next() {
		var sr SongRequest
		if err := rows.Scan(&sr.ID, &sr.VideoID, &sr.Title, &sr.DurationSeconds,
			&sr.UserID, &sr.TableID, &sr.Status, &sr.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, sr)
	}
	return items, rows.Err()
}

const listSongRequests = `
SELECT sr.id, sr.video_id, sr.title, sr.duration_seconds, sr.user_id, sr.table_id, sr.status, sr.created_at,
       u.nickname
FROM song_requests sr
LEFT JOIN users u ON u.id = sr.user_id
WHERE (?1 IS NULL OR sr.table_id = ?1)
  AND (?2 IS NULL OR sr.status = ?2)
ORDER BY sr.id ASC
LIMIT ?3 OFFSET ?4
`

type ListSongRequestsParams struct {
	TableID sql.NullInt64
	Status  sql.NullString
	Limit   int64
	Offset  int64
}

// ListSongRequestsRow joins the requester's nickname onto the request for the
// moderation view.
type ListSongRequestsRow struct {
	SongRequest
	RequesterNickname sql.NullString
}

func (q *Queries) ListSongRequests(ctx context.Context, arg ListSongRequestsParams) ([]ListSongRequestsRow, error) {
	rows, err := q.db.QueryContext(ctx, listSongRequests, arg.TableID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListSongRequestsRow
	for rows.Next() {
		var r ListSongRequestsRow
		if err := rows.Scan(&r.ID, &r.VideoID, &r.Title, &r.DurationSeconds,
			&r.UserID, &r.TableID, &r.Status, &r.CreatedAt, &r.RequesterNickname); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countSongRequests = `
SELECT COUNT(*)
FROM song_requests
WHERE (?1 IS NULL OR table_id = ?1)
  AND (?2 IS NULL OR status = ?2)
`

type CountSongRequestsParams struct {
	TableID sql.NullInt64
	Status  sql.NullString
}

func (q *Queries) CountSongRequests(ctx context.Context, arg CountSongRequestsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countSongRequests, arg.TableID, arg.Status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

func scanSongRequest(row *sql.Row) (SongRequest, error) {
	var sr SongRequest
	err := row.Scan(&sr.ID, &sr.VideoID, &sr.Title, &sr.DurationSeconds,
		&sr.UserID, &sr.TableID, &sr.Status, &sr.CreatedAt)
	return sr, err
}
