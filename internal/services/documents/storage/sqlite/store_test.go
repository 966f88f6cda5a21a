package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashmont/clientdocs/internal/services/documents/storage"
)

func TestPutAndGetClient(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	client := storage.ClientRecord{
		ID:        "c-123",
		Name:      "Acme Holdings",
		Email:     "billing@acme.example",
		Locale:    "pt-BR",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.PutClient(context.Background(), client); err != nil {
		t.Fatalf("put client: %v", err)
	}

	got, err := store.GetClient(context.Background(), "c-123")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if got.Name != "Acme Holdings" {
		t.Fatalf("name = %q, want %q", got.Name, "Acme Holdings")
	}
	if got.Email != "billing@acme.example" {
		t.Fatalf("email = %q, want %q", got.Email, "billing@acme.example")
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}

	// Upsert replaces mutable fields and keeps the creation time.
	client.Name = "Acme Holdings Ltd"
	client.UpdatedAt = now.Add(time.Hour)
	if err := store.PutClient(context.Background(), client); err != nil {
		t.Fatalf("update client: %v", err)
	}
	got, err = store.GetClient(context.Background(), "c-123")
	if err != nil {
		t.Fatalf("get updated client: %v", err)
	}
	if got.Name != "Acme Holdings Ltd" {
		t.Fatalf("updated name = %q, want %q", got.Name, "Acme Holdings Ltd")
	}
	if !got.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("updated at = %v, want %v", got.UpdatedAt, now.Add(time.Hour))
	}

	if _, err := store.GetClient(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing client err = %v, want ErrNotFound", err)
	}
}

func TestPutClientRejectsDuplicateEmail(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := store.PutClient(context.Background(), storage.ClientRecord{
		ID:        "c-1",
		Name:      "First",
		Email:     "shared@firm.example",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("put first client: %v", err)
	}
	err := store.PutClient(context.Background(), storage.ClientRecord{
		ID:        "c-2",
		Name:      "Second",
		Email:     "shared@firm.example",
		CreatedAt: now,
	})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email err = %v, want ErrAlreadyExists", err)
	}
}

func TestListClientsPaging(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	ids := []string{"c-a", "c-b", "c-c"}
	for i, id := range ids {
		if err := store.PutClient(context.Background(), storage.ClientRecord{
			ID:        id,
			Name:      "Client " + id,
			Email:     id + "@firm.example",
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("put client %s: %v", id, err)
		}
	}

	page, err := store.ListClients(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(page.Clients) != 2 {
		t.Fatalf("page len = %d, want 2", len(page.Clients))
	}
	if page.Clients[0].ID != "c-a" || page.Clients[1].ID != "c-b" {
		t.Fatalf("page ids = %q, %q, want c-a, c-b", page.Clients[0].ID, page.Clients[1].ID)
	}
	if page.NextPageToken == "" {
		t.Fatal("expected next page token on first page")
	}

	rest, err := store.ListClients(context.Background(), 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list clients second page: %v", err)
	}
	if len(rest.Clients) != 1 {
		t.Fatalf("second page len = %d, want 1", len(rest.Clients))
	}
	if rest.Clients[0].ID != "c-c" {
		t.Fatalf("second page id = %q, want c-c", rest.Clients[0].ID)
	}
	if rest.NextPageToken != "" {
		t.Fatalf("next page token = %q, want empty on last page", rest.NextPageToken)
	}
}

func TestPutAndListRequests(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
	seedClient(t, store, "c-123", now)
	seedClient(t, store, "c-456", now)

	requests := []storage.RequestRecord{
		{ID: "req-1", ClientID: "c-123", Title: "Bank statement", Status: "open", CreatedAt: now},
		{ID: "req-2", ClientID: "c-123", Title: "Tax return", Status: "fulfilled", CreatedAt: now.Add(time.Minute)},
		{ID: "req-3", ClientID: "c-456", Title: "Payroll summary", Status: "open", CreatedAt: now.Add(2 * time.Minute)},
	}
	for _, request := range requests {
		if err := store.PutRequest(context.Background(), request); err != nil {
			t.Fatalf("put request %s: %v", request.ID, err)
		}
	}

	all, err := store.ListRequests(context.Background(), storage.RequestQuery{})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all len = %d, want 3", len(all))
	}
	if all[0].ID != "req-3" {
		t.Fatalf("newest first id = %q, want req-3", all[0].ID)
	}

	scoped, err := store.ListRequests(context.Background(), storage.RequestQuery{ClientID: "c-123"})
	if err != nil {
		t.Fatalf("list requests by client: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped len = %d, want 2", len(scoped))
	}

	open, err := store.ListRequests(context.Background(), storage.RequestQuery{ClientID: "c-123", Status: "open"})
	if err != nil {
		t.Fatalf("list open requests: %v", err)
	}
	if len(open) != 1 || open[0].ID != "req-1" {
		t.Fatalf("open requests = %v, want single req-1", open)
	}

	filtered, err := store.ListRequests(context.Background(), storage.RequestQuery{
		FilterClause: "title = ?",
		FilterParams: []any{"Bank statement"},
	})
	if err != nil {
		t.Fatalf("list filtered requests: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ClientID != "c-123" {
		t.Fatalf("filtered requests = %v, want single c-123 entry", filtered)
	}

	counts, err := store.CountRequestsByStatus(context.Background(), "c-123")
	if err != nil {
		t.Fatalf("count requests: %v", err)
	}
	if counts["open"] != 1 || counts["fulfilled"] != 1 {
		t.Fatalf("counts = %v, want open=1 fulfilled=1", counts)
	}
}

func TestPutAndListAttachments(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	seedClient(t, store, "c-123", now)
	if err := store.PutRequest(context.Background(), storage.RequestRecord{
		ID: "req-1", ClientID: "c-123", Title: "Bank statement", Status: "open", CreatedAt: now,
	}); err != nil {
		t.Fatalf("put request: %v", err)
	}

	first := storage.AttachmentRecord{
		ID:         "att-1",
		RequestID:  "req-1",
		Filename:   "statement-jan.pdf",
		SHA256:     "aa11",
		SizeBytes:  2048,
		PageCount:  3,
		UploadedBy: "c-123",
		CreatedAt:  now,
	}
	second := first
	second.ID = "att-2"
	second.Filename = "statement-feb.pdf"
	second.CreatedAt = now.Add(time.Minute)

	if err := store.PutAttachment(context.Background(), first); err != nil {
		t.Fatalf("put first attachment: %v", err)
	}
	if err := store.PutAttachment(context.Background(), second); err != nil {
		t.Fatalf("put second attachment: %v", err)
	}

	got, err := store.GetAttachment(context.Background(), "att-1")
	if err != nil {
		t.Fatalf("get attachment: %v", err)
	}
	if got.PageCount != 3 || got.SizeBytes != 2048 {
		t.Fatalf("attachment = %+v, want 3 pages and 2048 bytes", got)
	}

	list, err := store.ListAttachmentsByRequest(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("attachments len = %d, want 2", len(list))
	}
	if list[0].ID != "att-1" || list[1].ID != "att-2" {
		t.Fatalf("attachment order = %q, %q, want att-1, att-2", list[0].ID, list[1].ID)
	}
}

func TestAppendAndListAuditEvents(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 13, 8, 0, 0, 0, time.UTC)

	events := []storage.AuditEvent{
		{Action: "request.created", ActorID: "staff-1", ClientID: "c-123", RequestID: "req-1", Timestamp: now},
		{Action: "request.fulfilled", ActorID: "c-123", ClientID: "c-123", RequestID: "req-1", Timestamp: now.Add(time.Minute)},
		{Action: "client.created", ActorID: "staff-1", ClientID: "c-456", Timestamp: now.Add(2 * time.Minute)},
	}
	for _, event := range events {
		if err := store.AppendAuditEvent(context.Background(), event); err != nil {
			t.Fatalf("append audit event %s: %v", event.Action, err)
		}
	}

	all, err := store.ListAuditEvents(context.Background(), storage.AuditQuery{})
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("audit len = %d, want 3", len(all))
	}
	if all[0].Action != "client.created" {
		t.Fatalf("newest first action = %q, want client.created", all[0].Action)
	}

	scoped, err := store.ListAuditEvents(context.Background(), storage.AuditQuery{
		FilterClause: "client_id = ?",
		FilterParams: []any{"c-123"},
	})
	if err != nil {
		t.Fatalf("list scoped audit events: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("scoped audit len = %d, want 2", len(scoped))
	}
}

func TestGetPortalStatistics(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	seedClient(t, store, "c-123", now)
	seedClient(t, store, "c-456", now.Add(time.Hour))

	if err := store.PutRequest(context.Background(), storage.RequestRecord{
		ID: "req-1", ClientID: "c-123", Title: "Bank statement", Status: "open", CreatedAt: now,
	}); err != nil {
		t.Fatalf("put open request: %v", err)
	}
	if err := store.PutRequest(context.Background(), storage.RequestRecord{
		ID: "req-2", ClientID: "c-123", Title: "Tax return", Status: "fulfilled", CreatedAt: now,
	}); err != nil {
		t.Fatalf("put fulfilled request: %v", err)
	}

	stats, err := store.GetPortalStatistics(context.Background(), nil)
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	if stats.ClientCount != 2 {
		t.Fatalf("client count = %d, want 2", stats.ClientCount)
	}
	if stats.OpenRequestCount != 1 {
		t.Fatalf("open request count = %d, want 1", stats.OpenRequestCount)
	}

	since := now.Add(30 * time.Minute)
	recent, err := store.GetPortalStatistics(context.Background(), &since)
	if err != nil {
		t.Fatalf("get recent statistics: %v", err)
	}
	if recent.ClientCount != 1 {
		t.Fatalf("recent client count = %d, want 1", recent.ClientCount)
	}
}

func seedClient(t *testing.T, store *Store, id string, now time.Time) {
	t.Helper()
	if err := store.PutClient(context.Background(), storage.ClientRecord{
		ID:        id,
		Name:      "Client " + id,
		Email:     id + "@firm.example",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("seed client %s: %v", id, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
