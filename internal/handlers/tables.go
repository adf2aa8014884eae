package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laranacanta/backend/internal/config"
	"github.com/laranacanta/backend/internal/crypto"
	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/logging"
	"github.com/laranacanta/backend/internal/middleware"
	"github.com/laranacanta/backend/internal/models"
	"github.com/laranacanta/backend/internal/services"
)

// TableHandler manages the join flow: resolving a join code, registering the
// identity, and issuing the session token.
type TableHandler struct {
	tables *services.TableService
	auth   *services.AuthService
	hub    Publisher
	cfg    *config.Config
}

// NewTableHandler creates a TableHandler with the required dependencies.
func NewTableHandler(tables *services.TableService, auth *services.AuthService, pub Publisher, cfg *config.Config) *TableHandler {
	return &TableHandler{tables: tables, auth: auth, hub: pub, cfg: cfg}
}

// Connect joins a patron to the table behind the scanned code: resolves the
// code, creates a guest identity, issues the session token, and announces the
// arrival to the table's room.
func (h *TableHandler) Connect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// The body is optional; patrons may join without picking a nickname.
	var req models.ConnectRequest
	json.NewDecoder(r.Body).Decode(&req)

	table, err := h.tables.ResolveJoinCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logging.LogSecurityEvent(r.Context(), logging.SecurityEventBadJoinCode, "unknown or inactive join code")
			writeError(w, http.StatusNotFound, "table not found or inactive")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to resolve join code", err)
		return
	}

	user, err := h.tables.RegisterGuest(r.Context(), table.ID, req.Nickname)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to register guest", err)
		return
	}

	token, err := h.auth.Issue(user.ID, table.ID, user.Nickname, services.RoleGuest)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	h.hub.Publish(hub.RoomID(table.ID), hub.EventUserJoined, models.UserJoinedEvent{Nickname: user.Nickname})

	writeJSON(w, http.StatusCreated, models.ConnectResponse{
		Token: token,
		User:  userToResponse(user),
		Table: models.TableResponse{ID: table.ID, Name: table.Name},
	})
}

// AdminConnect joins staff to a table. The staff password is verified via the
// day-salted scrypt hash before an admin identity is created.
func (h *TableHandler) AdminConnect(w http.ResponseWriter, r *http.Request) {
	var req models.AdminConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Code == "" || req.PasswordHash == "" {
		writeError(w, http.StatusBadRequest, "code and passwordHash are required")
		return
	}

	expectedHash, err := crypto.DaySaltedHash(h.cfg.AdminPassword)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to verify password", err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.PasswordHash), []byte(expectedHash)) != 1 {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventBadAdminPassword, "invalid admin password")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	table, err := h.tables.ResolveJoinCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logging.LogSecurityEvent(r.Context(), logging.SecurityEventBadJoinCode, "unknown or inactive join code")
			writeError(w, http.StatusNotFound, "table not found or inactive")
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to resolve join code", err)
		return
	}

	user, err := h.tables.RegisterAdmin(r.Context(), table.ID, req.Nickname)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to register admin", err)
		return
	}

	token, err := h.auth.Issue(user.ID, table.ID, user.Nickname, services.RoleAdmin)
	if err != nil {
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to issue token", err)
		return
	}

	h.hub.Publish(hub.RoomID(table.ID), hub.EventUserJoined, models.UserJoinedEvent{Nickname: user.Nickname})

	writeJSON(w, http.StatusCreated, models.ConnectResponse{
		Token: token,
		User:  userToResponse(user),
		Table: models.TableResponse{ID: table.ID, Name: table.Name},
	})
}

// Me echoes the identity claims of the bearer token.
func (h *TableHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	writeJSON(w, http.StatusOK, models.MeResponse{
		User: models.ClaimsResponse{
			UserID:   claims.UserID,
			TableID:  claims.TableID,
			Nickname: claims.Nickname,
			Role:     string(claims.Role),
		},
	})
}

func userToResponse(u db.User) models.UserResponse {
	return models.UserResponse{
		ID:       u.ID,
		Nickname: u.Nickname,
		Level:    u.Level,
		Points:   u.Points,
		Role:     u.Role,
		TableID:  u.TableID,
	}
}
