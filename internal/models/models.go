// Package models defines the JSON request and response shapes of the REST API
// and the payloads pushed over the live channel.
package models

import "time"

// Table join
type ConnectRequest struct {
	Nickname string `json:"nickname,omitempty"`
}

type ConnectResponse struct {
	Token string        `json:"token"`
	User  UserResponse  `json:"user"`
	Table TableResponse `json:"table"`
}

// AdminConnectRequest joins a table with staff privileges. The password hash
// is computed client-side with the day-salted scrypt scheme.
type AdminConnectRequest struct {
	Code         string `json:"code"`
	Nickname     string `json:"nickname,omitempty"`
	PasswordHash string `json:"passwordHash"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Level    int64  `json:"level"`
	Points   int64  `json:"points"`
	Role     string `json:"role"`
	TableID  int64  `json:"tableId"`
}

type TableResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MeResponse echoes the identity claims carried by the bearer token.
type MeResponse struct {
	User ClaimsResponse `json:"user"`
}

type ClaimsResponse struct {
	UserID   int64  `json:"userId"`
	TableID  int64  `json:"tableId"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// Song requests
type SubmitSongRequest struct {
	ExternalVideoID string `json:"externalVideoId"`
	Title           string `json:"title"`
	DurationSeconds *int64 `json:"durationSeconds,omitempty"`
}

type SongRequestResponse struct {
	ID                int64     `json:"id"`
	ExternalVideoID   string    `json:"externalVideoId"`
	Title             string    `json:"title"`
	DurationSeconds   *int64    `json:"durationSeconds,omitempty"`
	RequesterUserID   int64     `json:"requesterUserId"`
	RequesterNickname *string   `json:"requesterNickname,omitempty"`
	TableID           int64     `json:"tableId"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Moderation view
type ListSongsResponse struct {
	Data       []SongRequestResponse `json:"data"`
	Pagination PaginationResponse    `json:"pagination"`
}

type PaginationResponse struct {
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

// Search
type SearchResultResponse struct {
	ExternalVideoID string `json:"externalVideoId"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnailUrl"`
}

// Live events
type UserJoinedEvent struct {
	Nickname string `json:"nickname"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
