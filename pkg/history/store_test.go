package history

import (
	"context"
	"os"
	"testing"
)

// These tests require a live Postgres instance; set RTS_DATABASE_URL to run.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("RTS_DATABASE_URL")
	if url == "" {
		t.Skip("RTS_DATABASE_URL not set")
	}
	store, err := Open(url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecentMatches(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	players := []PlayerRecord{
		{Seat: 0, Name: "Player 1", AI: false, Kills: 24, Losses: 18},
		{Seat: 1, Name: "Hive Mind", AI: true, Kills: 18, Losses: 24},
	}
	id, err := store.RecordMatch(ctx, 0, 312_000, players)
	if err != nil {
		t.Fatalf("RecordMatch() error = %v", err)
	}
	if id == "" {
		t.Fatal("RecordMatch() returned empty ID")
	}

	matches, err := store.RecentMatches(ctx, 5)
	if err != nil {
		t.Fatalf("RecentMatches() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("RecentMatches() returned no matches")
	}

	got := matches[0]
	if got.ID != id {
		t.Errorf("newest match ID = %s, want %s", got.ID, id)
	}
	if got.WinnerSeat != 0 {
		t.Errorf("WinnerSeat = %d, want 0", got.WinnerSeat)
	}
	if len(got.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(got.Players))
	}
	if got.Players[1].Name != "Hive Mind" || !got.Players[1].AI {
		t.Errorf("Players[1] = %+v, want AI player Hive Mind", got.Players[1])
	}
}
