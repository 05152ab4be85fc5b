package seed

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/cadieux/rostersync/internal/services/roster/storage/sqlite"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/roster.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.FixturePath != "events.yaml" {
		t.Fatalf("fixture path = %q", cfg.FixturePath)
	}
}

func TestLoad_UpsertsEvents(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fixture := filepath.Join(dir, "events.yaml")
	write := func(body string) {
		if err := os.WriteFile(fixture, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	write(`events:
  - code: 26w5001
    name: Topology of Manifolds
    time_zone: America/Edmonton
    start_date: 2026-03-01
    end_date: 2026-03-06
    max_participants: 42
    max_observers: 2
    max_virtual: 300
`)
	ctx := context.Background()
	if err := Load(ctx, store, fixture); err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	event, err := store.GetEventByCode(ctx, "26w5001")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if event.Name != "Topology of Manifolds" {
		t.Fatalf("name = %q", event.Name)
	}
	if event.MaxParticipants != 42 {
		t.Fatalf("max participants = %d", event.MaxParticipants)
	}

	// A second load with a new name keeps the local id.
	write(`events:
  - code: 26w5001
    name: Topology of Manifolds II
    time_zone: America/Edmonton
`)
	if err := Load(ctx, store, fixture); err != nil {
		t.Fatalf("reload fixture: %v", err)
	}
	updated, err := store.GetEventByCode(ctx, "26w5001")
	if err != nil {
		t.Fatalf("get updated event: %v", err)
	}
	if updated.ID != event.ID {
		t.Fatalf("id changed on reload: %q != %q", updated.ID, event.ID)
	}
	if updated.Name != "Topology of Manifolds II" {
		t.Fatalf("name = %q", updated.Name)
	}
}

func TestLoad_RejectsBadFixtures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := sqlite.Open(filepath.Join(dir, "roster.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cases := []struct {
		name string
		body string
	}{
		{"empty", "events: []\n"},
		{"missing code", "events:\n  - name: No Code\n"},
		{"bad time zone", "events:\n  - code: 26w5002\n    time_zone: Mars/Olympus\n"},
		{"bad date", "events:\n  - code: 26w5002\n    start_date: 03/01/2026\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := filepath.Join(dir, tc.name+".yaml")
			if err := os.WriteFile(fixture, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			if err := Load(context.Background(), store, fixture); err == nil {
				t.Fatal("expected load to fail")
			}
		})
	}
}
