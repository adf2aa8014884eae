package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/models"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// adminStore is the slice of the query contract the moderation handlers need.
type adminStore interface {
	ListSongRequests(ctx context.Context, arg db.ListSongRequestsParams) ([]db.ListSongRequestsRow, error)
	CountSongRequests(ctx context.Context, arg db.CountSongRequestsParams) (int64, error)
	TransitionSongRequest(ctx context.Context, arg db.TransitionSongRequestParams) (db.SongRequest, error)
	MarkSongPerformed(ctx context.Context, id int64) (db.SongRequest, error)
}

// AdminHandler covers the moderation surface: the paginated queue view and
// the approve/reject/performed decisions.
type AdminHandler struct {
	store adminStore
	hub   Publisher
}

// NewAdminHandler creates an AdminHandler with the given store and publisher.
func NewAdminHandler(store adminStore, pub Publisher) *AdminHandler {
	return &AdminHandler{store: store, hub: pub}
}

// List returns a page of song requests, optionally filtered by status.
// Ordering is stable by creation order; a page past the end yields an empty
// data array, not an error.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := parsePositiveInt(query.Get("page"), defaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, err := parsePositiveInt(query.Get("limit"), defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	var status sql.NullString
	if s := query.Get("status"); s != "" {
		switch s {
		case db.SongStatusPending, db.SongStatusApproved, db.SongStatusRejected, db.SongStatusPerformed:
			status = sql.NullString{String: s, Valid: true}
		default:
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
	}

	totalItems, err := h.store.CountSongRequests(r.Context(), db.CountSongRequestsParams{Status: status})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to count song requests", err)
		return
	}

	rows, err := h.store.ListSongRequests(r.Context(), db.ListSongRequestsParams{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to fetch song requests", err)
		return
	}

	data := make([]models.SongRequestResponse, len(rows))
	for i, row := range rows {
		data[i] = songRequestToResponse(row.SongRequest)
		if row.RequesterNickname.Valid {
			nickname := row.RequesterNickname.String
			data[i].RequesterNickname = &nickname
		}
	}

	writeJSON(w, http.StatusOK, models.ListSongsResponse{
		Data: data,
		Pagination: models.PaginationResponse{
			CurrentPage: page,
			TotalPages:  (totalItems + limit - 1) / limit,
			TotalItems:  totalItems,
		},
	})
}

// Approve moves a pending request to approved.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, db.SongStatusApproved)
}

// Reject moves a pending request to rejected.
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, db.SongStatusRejected)
}

func (h *AdminHandler) transition(w http.ResponseWriter, r *http.Request, target string) {
	id, ok := parseSongID(w, r)
	if !ok {
		return
	}

	songRequest, err := h.store.TransitionSongRequest(r.Context(), db.TransitionSongRequestParams{
		Status: target,
		ID:     id,
	})
	if err != nil {
		writeTransitionError(r.Context(), w, err)
		return
	}

	resp := songRequestToResponse(songRequest)
	h.hub.Publish(hub.RoomID(songRequest.TableID), hub.EventQueueUpdated, resp)

	writeJSON(w, http.StatusOK, resp)
}

// Performed closes out an approved request once it has been sung.
func (h *AdminHandler) Performed(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSongID(w, r)
	if !ok {
		return
	}

	songRequest, err := h.store.MarkSongPerformed(r.Context(), id)
	if err != nil {
		writeTransitionError(r.Context(), w, err)
		return
	}

	resp := songRequestToResponse(songRequest)
	h.hub.Publish(hub.RoomID(songRequest.TableID), hub.EventQueueUpdated, resp)

	writeJSON(w, http.StatusOK, resp)
}

func parseSongID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid song request ID")
		return 0, false
	}
	return id, true
}

func writeTransitionError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "song request not found")
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, "song request already decided")
	default:
		writeErrorWithCause(ctx, w, http.StatusInternalServerError, "failed to update song request", err)
	}
}

func parsePositiveInt(value string, defaultValue int64) (int64, error) {
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
