package presetstore

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

// testStore creates a temporary in-memory store for testing.
func testStore(t *testing.T) *Store {
	t.Helper()

	cfg := Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	store, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestMigrate_Idempotent(t *testing.T) {
	store := testStore(t)
	applied, err := store.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if applied != 0 {
		t.Errorf("second migrate applied %d migrations, want 0", applied)
	}
}

func TestSaveAndGetPreset(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	saved, err := store.SavePreset(ctx, "twice-weekly", "type: weekly\ndays: [0, 3]\n")
	if err != nil {
		t.Fatalf("save preset: %v", err)
	}
	if saved.ID == 0 {
		t.Error("ID not assigned")
	}
	if saved.Name != "twice-weekly" {
		t.Errorf("Name = %q, want %q", saved.Name, "twice-weekly")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := store.GetPreset(ctx, "twice-weekly")
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if got.Definition != saved.Definition {
		t.Errorf("Definition = %q, want %q", got.Definition, saved.Definition)
	}
}

func TestSavePreset_Upsert(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.SavePreset(ctx, "upsert", "type: daily\n")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	second, err := store.SavePreset(ctx, "upsert", "type: weekly\ndays: [5]\n")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: ID %d -> %d", first.ID, second.ID)
	}
	if second.Definition != "type: weekly\ndays: [5]\n" {
		t.Errorf("Definition not updated: %q", second.Definition)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	store := testStore(t)

	_, err := store.GetPreset(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("GetPreset error = %v, want not-found", err)
	}
}

func TestListPresets(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.SavePreset(ctx, "zulu", "type: daily\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SavePreset(ctx, "alpha", "type: daily\n"); err != nil {
		t.Fatal(err)
	}

	presets, err := store.ListPresets(ctx)
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(presets))
	}
	if presets[0].Name != "alpha" || presets[1].Name != "zulu" {
		t.Errorf("presets not ordered by name: %q, %q", presets[0].Name, presets[1].Name)
	}
}

func TestListPresets_Empty(t *testing.T) {
	store := testStore(t)
	presets, err := store.ListPresets(context.Background())
	if err != nil {
		t.Fatalf("list presets: %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("got %d presets, want 0", len(presets))
	}
}

func TestDeletePreset(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.SavePreset(ctx, "ephemeral", "type: daily\n"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeletePreset(ctx, "ephemeral"); err != nil {
		t.Fatalf("delete preset: %v", err)
	}
	if _, err := store.GetPreset(ctx, "ephemeral"); !IsNotFound(err) {
		t.Errorf("preset still present after delete: %v", err)
	}
}

func TestDeletePreset_NotFound(t *testing.T) {
	store := testStore(t)
	err := store.DeletePreset(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("DeletePreset error = %v, want not-found", err)
	}
}

func TestHealth(t *testing.T) {
	store := testStore(t)
	if err := store.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v", err)
	}
}
