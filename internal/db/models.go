package db

import (
	"database/sql"
	"time"
)

// Table statuses. Only active tables accept joins.
const (
	TableStatusActive   = "active"
	TableStatusInactive = "inactive"
)

// Song request statuses. Transitions are one-way: pending may move to
// approved or rejected, approved may move to performed. Nothing leaves
// rejected or performed.
const (
	SongStatusPending   = "pending"
	SongStatusApproved  = "approved"
	SongStatusRejected  = "rejected"
	SongStatusPerformed = "performed"
)

type Table struct {
	ID        int64
	Name      string
	JoinCode  string
	Status    string
	CreatedAt time.Time
}

type User struct {
	ID        int64
	Nickname  string
	Level     int64
	Points    int64
	Role      string
	TableID   int64
	CreatedAt time.Time
}

type SongRequest struct {
	ID              int64
	VideoID         string
	Title           string
	DurationSeconds sql.NullInt64
	UserID          int64
	TableID         int64
	Status          string
	CreatedAt       time.Time
}
