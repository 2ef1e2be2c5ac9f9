package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/yllada/vncviewer/connection"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { h.Close() })

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	h.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return h
}

func conn(name, host string, port int) *connection.Connection {
	c := connection.New()
	c.SetName(name)
	c.SetHost(host)
	c.SetPort(port)
	return c
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t)

	for _, c := range []*connection.Connection{
		conn("Office", "office.lan", 5901),
		conn("", "lab", 5900),
		conn("Office", "office.lan", 5901),
		conn("", "lab", 5902),
	} {
		if _, err := h.Record(ctx, c); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}

	want := []string{"lab:5902", "office.lan:5901", "lab:5900"}
	if len(entries) != len(want) {
		t.Fatalf("Recent() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if got := e.Connection().Address(); got != want[i] {
			t.Errorf("entry %d = %s, want %s", i, got, want[i])
		}
	}
	if entries[1].Name != "Office" {
		t.Errorf("Name = %q, want Office", entries[1].Name)
	}
	if !entries[0].ConnectedAt.After(entries[1].ConnectedAt) {
		t.Error("entries should be newest first")
	}
}

func TestRecent_Limit(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t)

	for port := 5900; port < 5905; port++ {
		if _, err := h.Record(ctx, conn("", "h", port)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := h.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Port != 5904 || entries[1].Port != 5903 {
		t.Errorf("Recent(2) = %+v", entries)
	}

	if entries, _ := h.Recent(ctx, 0); len(entries) != 0 {
		t.Errorf("Recent(0) = %+v, want none", entries)
	}
}

func TestRecord_IDs(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t)

	a, err := h.Record(ctx, conn("", "a", 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Record(ctx, conn("", "a", 1))
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs should be unique, got %q and %q", a.ID, b.ID)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t)

	if _, err := h.Record(ctx, conn("", "a", 1)); err != nil {
		t.Fatal(err)
	}
	if err := h.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	entries, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() after Clear() = %+v", entries)
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.Record(ctx, conn("", "a", 1)); err != nil {
		t.Fatal(err)
	}
	h.Close()

	h, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	entries, err := h.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Host != "a" {
		t.Errorf("Recent() = %+v", entries)
	}
}
