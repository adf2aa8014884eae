package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/laranacanta/backend/internal/database"
)

func newTestQueries(t *testing.T) *Queries {
	t.Helper()

	sqlDB, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(sqlDB); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return New(sqlDB)
}

func createTestTable(t *testing.T, q *Queries, name, joinCode string) Table {
	t.Helper()
	table, err := q.CreateTable(context.Background(), CreateTableParams{Name: name, JoinCode: joinCode})
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return table
}

func createTestUser(t *testing.T, q *Queries, nickname string, tableID int64) User {
	t.Helper()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Nickname: nickname,
		Role:     "guest",
		TableID:  tableID,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestSong(t *testing.T, q *Queries, userID, tableID int64, title string) SongRequest {
	t.Helper()
	sr, err := q.CreateSongRequest(context.Background(), CreateSongRequestParams{
		VideoID: "vid-" + title,
		Title:   title,
		UserID:  userID,
		TableID: tableID,
	})
	if err != nil {
		t.Fatalf("failed to create song request: %v", err)
	}
	return sr
}

func TestCreateAndGetTable(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	created := createTestTable(t, q, "Mesa 7", "apple-river-42")
	if created.Status != TableStatusActive {
		t.Errorf("Status = %q, want %q", created.Status, TableStatusActive)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := q.GetTableByJoinCode(ctx, "apple-river-42")
	if err != nil {
		t.Fatalf("GetTableByJoinCode failed: %v", err)
	}
	if got.ID != created.ID || got.Name != "Mesa 7" {
		t.Errorf("got %+v, want the created table", got)
	}
}

func TestGetTableByJoinCodeUnknown(t *testing.T) {
	q := newTestQueries(t)

	_, err := q.GetTableByJoinCode(context.Background(), "no-such-code-0")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestInactiveTableIsNotJoinable(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	if err := q.SetTableStatus(ctx, SetTableStatusParams{Status: TableStatusInactive, ID: table.ID}); err != nil {
		t.Fatalf("SetTableStatus failed: %v", err)
	}

	_, err := q.GetTableByJoinCode(ctx, "apple-river-42")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for an inactive table", err)
	}
}

func TestDuplicateJoinCodeRejected(t *testing.T) {
	q := newTestQueries(t)

	createTestTable(t, q, "Mesa 7", "apple-river-42")
	_, err := q.CreateTable(context.Background(), CreateTableParams{Name: "Mesa 8", JoinCode: "apple-river-42"})
	if err == nil {
		t.Fatal("expected a unique constraint error for a duplicate join code")
	}
}

func TestSetTableStatusUnknownID(t *testing.T) {
	q := newTestQueries(t)

	err := q.SetTableStatus(context.Background(), SetTableStatusParams{Status: TableStatusInactive, ID: 999})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateUserDefaults(t *testing.T) {
	q := newTestQueries(t)

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)

	if user.Level != 1 {
		t.Errorf("Level = %d, want 1", user.Level)
	}
	if user.Points != 0 {
		t.Errorf("Points = %d, want 0", user.Points)
	}
	if user.Role != "guest" {
		t.Errorf("Role = %q, want guest", user.Role)
	}
}

func TestUpdateUserRoleByNickname(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)

	updated, err := q.UpdateUserRoleByNickname(ctx, UpdateUserRoleByNicknameParams{Role: "admin", Nickname: "Marco"})
	if err != nil {
		t.Fatalf("UpdateUserRoleByNickname failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	got, err := q.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Role != "admin" {
		t.Errorf("Role = %q, want admin", got.Role)
	}

	updated, err = q.UpdateUserRoleByNickname(ctx, UpdateUserRoleByNicknameParams{Role: "admin", Nickname: "Nobody"})
	if err != nil {
		t.Fatalf("UpdateUserRoleByNickname failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0 for an unknown nickname", updated)
	}
}

func TestCreateSongRequestDefaults(t *testing.T) {
	q := newTestQueries(t)

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)
	sr := createTestSong(t, q, user.ID, table.ID, "First")

	if sr.Status != SongStatusPending {
		t.Errorf("Status = %q, want %q", sr.Status, SongStatusPending)
	}
	if sr.DurationSeconds.Valid {
		t.Error("DurationSeconds should be null when omitted")
	}
	if sr.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestTransitionSongRequest(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)
	sr := createTestSong(t, q, user.ID, table.ID, "First")

	approved, err := q.TransitionSongRequest(ctx, TransitionSongRequestParams{Status: SongStatusApproved, ID: sr.ID})
	if err != nil {
		t.Fatalf("TransitionSongRequest failed: %v", err)
	}
	if approved.Status != SongStatusApproved {
		t.Errorf("Status = %q, want %q", approved.Status, SongStatusApproved)
	}

	// A second decision on the same request must not land.
	_, err = q.TransitionSongRequest(ctx, TransitionSongRequestParams{Status: SongStatusRejected, ID: sr.ID})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second transition error = %v, want ErrConflict", err)
	}

	got, err := q.GetSongRequestByID(ctx, sr.ID)
	if err != nil {
		t.Fatalf("GetSongRequestByID failed: %v", err)
	}
	if got.Status != SongStatusApproved {
		t.Errorf("Status after conflicting transition = %q, want %q", got.Status, SongStatusApproved)
	}
}

func TestTransitionSongRequestUnknownID(t *testing.T) {
	q := newTestQueries(t)

	_, err := q.TransitionSongRequest(context.Background(), TransitionSongRequestParams{Status: SongStatusApproved, ID: 999})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMarkSongPerformed(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)
	sr := createTestSong(t, q, user.ID, table.ID, "First")

	// Pending requests cannot be performed.
	_, err := q.MarkSongPerformed(ctx, sr.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("error = %v, want ErrConflict for a pending request", err)
	}

	if _, err := q.TransitionSongRequest(ctx, TransitionSongRequestParams{Status: SongStatusApproved, ID: sr.ID}); err != nil {
		t.Fatalf("TransitionSongRequest failed: %v", err)
	}

	performed, err := q.MarkSongPerformed(ctx, sr.ID)
	if err != nil {
		t.Fatalf("MarkSongPerformed failed: %v", err)
	}
	if performed.Status != SongStatusPerformed {
		t.Errorf("Status = %q, want %q", performed.Status, SongStatusPerformed)
	}
}

func TestGetSongRequestsByTableIDOrderAndScope(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table1 := createTestTable(t, q, "Mesa 7", "apple-river-42")
	table2 := createTestTable(t, q, "Mesa 3", "stone-bridge-8")
	user1 := createTestUser(t, q, "Marco", table1.ID)
	user2 := createTestUser(t, q, "Lucia", table2.ID)

	first := createTestSong(t, q, user1.ID, table1.ID, "First")
	createTestSong(t, q, user2.ID, table2.ID, "Other")
	second := createTestSong(t, q, user1.ID, table1.ID, "Second")

	queue, err := q.GetSongRequestsByTableID(ctx, table1.ID)
	if err != nil {
		t.Fatalf("GetSongRequestsByTableID failed: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("got %d requests, want 2", len(queue))
	}
	if queue[0].ID != first.ID || queue[1].ID != second.ID {
		t.Errorf("queue order = [%d %d], want [%d %d]", queue[0].ID, queue[1].ID, first.ID, second.ID)
	}
}

func TestListSongRequestsFiltersAndNickname(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)

	sr1 := createTestSong(t, q, user.ID, table.ID, "First")
	createTestSong(t, q, user.ID, table.ID, "Second")

	if _, err := q.TransitionSongRequest(ctx, TransitionSongRequestParams{Status: SongStatusApproved, ID: sr1.ID}); err != nil {
		t.Fatalf("TransitionSongRequest failed: %v", err)
	}

	rows, err := q.ListSongRequests(ctx, ListSongRequestsParams{
		Status: sql.NullString{String: SongStatusApproved, Valid: true},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("ListSongRequests failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].ID != sr1.ID {
		t.Errorf("ID = %d, want %d", rows[0].ID, sr1.ID)
	}
	if !rows[0].RequesterNickname.Valid || rows[0].RequesterNickname.String != "Marco" {
		t.Errorf("RequesterNickname = %+v, want Marco", rows[0].RequesterNickname)
	}

	// Unfiltered count covers both requests.
	total, err := q.CountSongRequests(ctx, CountSongRequestsParams{})
	if err != nil {
		t.Fatalf("CountSongRequests failed: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	pending, err := q.CountSongRequests(ctx, CountSongRequestsParams{
		Status: sql.NullString{String: SongStatusPending, Valid: true},
	})
	if err != nil {
		t.Fatalf("CountSongRequests failed: %v", err)
	}
	if pending != 1 {
		t.Errorf("pending = %d, want 1", pending)
	}
}

func TestListSongRequestsPagination(t *testing.T) {
	q := newTestQueries(t)
	ctx := context.Background()

	table := createTestTable(t, q, "Mesa 7", "apple-river-42")
	user := createTestUser(t, q, "Marco", table.ID)
	for i := 0; i < 5; i++ {
		createTestSong(t, q, user.ID, table.ID, string(rune('A'+i)))
	}

	page2, err := q.ListSongRequests(ctx, ListSongRequestsParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListSongRequests failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("got %d rows, want 2", len(page2))
	}

	past, err := q.ListSongRequests(ctx, ListSongRequestsParams{Limit: 10, Offset: 10})
	if err != nil {
		t.Fatalf("ListSongRequests failed: %v", err)
	}
	if len(past) != 0 {
		t.Errorf("got %d rows past the end, want 0", len(past))
	}
}
