package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/middleware"
	"github.com/laranacanta/backend/internal/models"
)

// songStore is the slice of the query contract the song handlers need.
type songStore interface {
	CreateSongRequest(ctx context.Context, arg db.CreateSongRequestParams) (db.SongRequest, error)
	GetSongRequestsByTableID(ctx context.Context, tableID int64) ([]db.SongRequest, error)
}

// SongHandler covers patron-facing queue operations: submitting a request and
// reading the table's queue.
type SongHandler struct {
	store songStore
	hub   Publisher
}

// NewSongHandler creates a SongHandler with the given store and publisher.
func NewSongHandler(store songStore, pub Publisher) *SongHandler {
	return &SongHandler{store: store, hub: pub}
}

// Submit adds a song request to the caller's table queue with status pending
// and announces it to the table's room.
func (h *SongHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req models.SubmitSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ExternalVideoID == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "externalVideoId and title are required")
		return
	}

	var duration sql.NullInt64
	if req.DurationSeconds != nil {
		duration = sql.NullInt64{Int64: *req.DurationSeconds, Valid: true}
	}

	songRequest, err := h.store.CreateSongRequest(r.Context(), db.CreateSongRequestParams{
		VideoID:         req.ExternalVideoID,
		Title:           req.Title,
		DurationSeconds: duration,
		UserID:          claims.UserID,
		TableID:         claims.TableID,
	})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create song request", err)
		return
	}

	resp := songRequestToResponse(songRequest)
	h.hub.Publish(hub.RoomID(claims.TableID), hub.EventSongAdded, resp)

	writeJSON(w, http.StatusCreated, resp)
}

// List returns the caller's full table queue in creation order. This is the
// authoritative read a client performs after (re)joining the room, since the
// push channel carries no replay.
func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	requests, err := h.store.GetSongRequestsByTableID(r.Context(), claims.TableID)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to fetch song requests", err)
		return
	}

	response := make([]models.SongRequestResponse, len(requests))
	for i, req := range requests {
		response[i] = songRequestToResponse(req)
	}

	writeJSON(w, http.StatusOK, response)
}

func songRequestToResponse(sr db.SongRequest) models.SongRequestResponse {
	resp := models.SongRequestResponse{
		ID:              sr.ID,
		ExternalVideoID: sr.VideoID,
		Title:           sr.Title,
		RequesterUserID: sr.UserID,
		TableID:         sr.TableID,
		Status:          sr.Status,
		CreatedAt:       sr.CreatedAt,
	}
	if sr.DurationSeconds.Valid {
		resp.DurationSeconds = &sr.DurationSeconds.Int64
	}
	return resp
}
