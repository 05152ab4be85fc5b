// Package seed loads event fixtures into the local roster mirror.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	entrypoint "github.com/cadieux/rostersync/internal/platform/cmd"
	"github.com/cadieux/rostersync/internal/platform/id"
	"github.com/cadieux/rostersync/internal/services/roster/domain"
	"github.com/cadieux/rostersync/internal/services/roster/storage/sqlite"
	"gopkg.in/yaml.v3"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"ROSTERSYNC_SYNCD_DB_PATH" envDefault:"data/roster.db"`
	FixturePath string `env:"ROSTERSYNC_SEED_FIXTURE" envDefault:"events.yaml"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The roster SQLite database path")
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "YAML file of events to load")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type fixtureFile struct {
	Events []eventFixture `yaml:"events"`
}

type eventFixture struct {
	Code            string `yaml:"code"`
	Name            string `yaml:"name"`
	TimeZone        string `yaml:"time_zone"`
	StartDate       string `yaml:"start_date"`
	EndDate         string `yaml:"end_date"`
	MaxParticipants int    `yaml:"max_participants"`
	MaxObservers    int    `yaml:"max_observers"`
	MaxVirtual      int    `yaml:"max_virtual"`
}

const fixtureDateLayout = "2006-01-02"

// Run loads the fixture file and upserts every event it describes.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open roster sqlite store: %w", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Printf("close roster sqlite store: %v", closeErr)
			}
		}()
		return Load(ctx, store, cfg.FixturePath)
	})
}

// Load parses one fixture file and upserts its events into the store.
// Events already in the mirror (matched by code) keep their local ids.
func Load(ctx context.Context, store domain.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", path, err)
	}
	var fixture fixtureFile
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(fixture.Events) == 0 {
		return fmt.Errorf("fixture %s contains no events", path)
	}

	for _, entry := range fixture.Events {
		event, err := buildEvent(entry)
		if err != nil {
			return err
		}
		existing, err := store.GetEventByCode(ctx, event.Code)
		switch {
		case err == nil:
			event.ID = existing.ID
		case errors.Is(err, domain.ErrNotFound):
			newID, idErr := id.NewID()
			if idErr != nil {
				return fmt.Errorf("generate event id: %w", idErr)
			}
			event.ID = newID
		default:
			return fmt.Errorf("look up event %s: %w", event.Code, err)
		}
		if err := store.PutEvent(ctx, event); err != nil {
			return fmt.Errorf("seed event %s: %w", event.Code, err)
		}
		log.Printf("seeded event %s (%s)", event.Code, event.Name)
	}
	return nil
}

func buildEvent(entry eventFixture) (domain.Event, error) {
	code := strings.TrimSpace(entry.Code)
	if code == "" {
		return domain.Event{}, fmt.Errorf("fixture event is missing a code")
	}
	event := domain.Event{
		Code:            code,
		Name:            strings.TrimSpace(entry.Name),
		TimeZone:        strings.TrimSpace(entry.TimeZone),
		MaxParticipants: entry.MaxParticipants,
		MaxObservers:    entry.MaxObservers,
		MaxVirtual:      entry.MaxVirtual,
	}
	if event.TimeZone == "" {
		event.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(event.TimeZone); err != nil {
		return domain.Event{}, fmt.Errorf("event %s: unknown time zone %q", code, event.TimeZone)
	}
	var err error
	if event.StartDate, err = parseFixtureDate(entry.StartDate); err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", code, err)
	}
	if event.EndDate, err = parseFixtureDate(entry.EndDate); err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", code, err)
	}
	return event, nil
}

func parseFixtureDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(fixtureDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return ts, nil
}
