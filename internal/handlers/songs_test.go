package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/models"
)

type fakeSongStore struct {
	created []db.CreateSongRequestParams
	queue   []db.SongRequest
	nextID  int64
}

func (m *fakeSongStore) CreateSongRequest(ctx context.Context, arg db.CreateSongRequestParams) (db.SongRequest, error) {
	m.created = append(m.created, arg)
	m.nextID++
	return db.SongRequest{
		ID:              m.nextID,
		VideoID:         arg.VideoID,
		Title:           arg.Title,
		DurationSeconds: arg.DurationSeconds,
		UserID:          arg.UserID,
		TableID:         arg.TableID,
		Status:          db.SongStatusPending,
		CreatedAt:       time.Now(),
	}, nil
}

func (m *fakeSongStore) GetSongRequestsByTableID(ctx context.Context, tableID int64) ([]db.SongRequest, error) {
	var out []db.SongRequest
	for _, sr := range m.queue {
		if sr.TableID == tableID {
			out = append(out, sr)
		}
	}
	return out, nil
}

func TestSubmit(t *testing.T) {
	store := &fakeSongStore{}
	pub := &fakePublisher{}
	h := NewSongHandler(store, pub)

	req := newTestRequest(http.MethodPost, "/api/songs",
		`{"externalVideoId":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","durationSeconds":212}`,
		nil, guestClaims(42, 7))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	resp := decodeBody[models.SongRequestResponse](t, rec)
	if resp.Status != db.SongStatusPending {
		t.Errorf("Status = %q, want %q", resp.Status, db.SongStatusPending)
	}
	if resp.ExternalVideoID != "dQw4w9WgXcQ" {
		t.Errorf("ExternalVideoID = %q, want %q", resp.ExternalVideoID, "dQw4w9WgXcQ")
	}
	if resp.DurationSeconds == nil || *resp.DurationSeconds != 212 {
		t.Errorf("DurationSeconds = %v, want 212", resp.DurationSeconds)
	}
	if resp.RequesterUserID != 42 || resp.TableID != 7 {
		t.Errorf("attribution = user %d table %d, want 42/7", resp.RequesterUserID, resp.TableID)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.RoomID != "mesa-7" || ev.Event != hub.EventSongAdded {
		t.Errorf("published %s to %s, want %s to mesa-7", ev.Event, ev.RoomID, hub.EventSongAdded)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing video id", `{"title":"Song"}`},
		{"missing title", `{"externalVideoId":"abc123"}`},
		{"invalid json", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeSongStore{}
			pub := &fakePublisher{}
			h := NewSongHandler(store, pub)

			req := newTestRequest(http.MethodPost, "/api/songs", tt.body, nil, guestClaims(42, 7))
			rec := httptest.NewRecorder()
			h.Submit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if len(store.created) != 0 {
				t.Error("nothing should be stored for an invalid submission")
			}
			if len(pub.events) != 0 {
				t.Error("nothing should be published for an invalid submission")
			}
		})
	}
}

func TestListQueueScopedToTable(t *testing.T) {
	store := &fakeSongStore{queue: []db.SongRequest{
		{ID: 1, VideoID: "a", Title: "First", TableID: 7, Status: db.SongStatusPending},
		{ID: 2, VideoID: "b", Title: "Other Table", TableID: 3, Status: db.SongStatusPending},
		{ID: 3, VideoID: "c", Title: "Second", TableID: 7, Status: db.SongStatusApproved},
	}}
	h := NewSongHandler(store, &fakePublisher{})

	req := newTestRequest(http.MethodGet, "/api/songs", "", nil, guestClaims(42, 7))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeBody[[]models.SongRequestResponse](t, rec)
	if len(resp) != 2 {
		t.Fatalf("got %d requests, want 2", len(resp))
	}
	if resp[0].ID != 1 || resp[1].ID != 3 {
		t.Errorf("queue order = [%d %d], want [1 3]", resp[0].ID, resp[1].ID)
	}
}

func TestListEmptyQueue(t *testing.T) {
	h := NewSongHandler(&fakeSongStore{}, &fakePublisher{})

	req := newTestRequest(http.MethodGet, "/api/songs", "", nil, guestClaims(42, 7))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	resp := decodeBody[[]models.SongRequestResponse](t, rec)
	if len(resp) != 0 {
		t.Errorf("got %d requests, want 0", len(resp))
	}
}
