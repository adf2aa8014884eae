package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/laranacanta/backend/internal/middleware"
	"github.com/laranacanta/backend/internal/services"
)

// recordedEvent captures one Publish call for assertions.
type recordedEvent struct {
	RoomID  string
	Event   string
	Payload any
}

// fakePublisher records published events instead of pushing to a room.
type fakePublisher struct {
	events []recordedEvent
}

func (p *fakePublisher) Publish(roomID, event string, payload any) {
	p.events = append(p.events, recordedEvent{RoomID: roomID, Event: event, Payload: payload})
}

// newTestRequest builds a request with optional chi URL params and claims in
// the context, mirroring what the router and auth middleware provide.
func newTestRequest(method, target, body string, urlParams map[string]string, claims *services.Claims) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range urlParams {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey, claims))
	}

	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return v
}

func guestClaims(userID, tableID int64) *services.Claims {
	return &services.Claims{UserID: userID, TableID: tableID, Nickname: "Marco", Role: services.RoleGuest}
}
