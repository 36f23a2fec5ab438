package storage

import (
	"testing"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRows() []model.GameRow {
	return []model.GameRow{
		{
			ID: "g1", DateISO: "2025-07-02T10:00:00.000Z", Mode: "Battle Royale",
			Home: model.SideLine{Name: "Sharks", Runs: 3},
			Away: model.SideLine{Name: "Comets", Runs: 1},
			YouAre: model.SideHome, IsOnline: true, YouRuns: 3, OppRuns: 1,
		},
		{
			ID: "g2", DateISO: "2025-07-03T10:00:00.000Z", Mode: "Exhibition",
			Home: model.SideLine{Name: "CPU"},
			Away: model.SideLine{Name: "CPU"},
			IsCPU: true,
		},
		{
			ID: "g3", Mode: "Exhibition", IsOnline: true,
		},
	}
}

func TestReplaceAndListHistory(t *testing.T) {
	db := openMemDB(t)

	if err := db.ReplaceHistory("jsmith99", "psn", "", sampleRows()); err != nil {
		t.Fatalf("ReplaceHistory: %v", err)
	}

	rows, err := db.ListHistory("jsmith99", "psn", "")
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	// Newest first, undated last.
	if rows[0].ID != "g2" || rows[1].ID != "g1" || rows[2].ID != "g3" {
		t.Errorf("order = %s, %s, %s", rows[0].ID, rows[1].ID, rows[2].ID)
	}
	if rows[1].YouAre != model.SideHome || rows[1].YouRuns != 3 {
		t.Errorf("round-tripped row = %+v", rows[1])
	}
	if !rows[0].IsCPU || rows[0].IsOnline {
		t.Errorf("CPU flags lost: %+v", rows[0])
	}
	if rows[1].Date.IsZero() {
		t.Error("dated row should parse its Date back")
	}

	// Replace is a swap, not an append.
	if err := db.ReplaceHistory("jsmith99", "psn", "", sampleRows()[:1]); err != nil {
		t.Fatalf("ReplaceHistory again: %v", err)
	}
	rows, _ = db.ListHistory("jsmith99", "psn", "")
	if len(rows) != 1 {
		t.Errorf("rows after replace = %d, want 1", len(rows))
	}

	// Other scopes are unaffected.
	other, _ := db.ListHistory("other", "psn", "")
	if len(other) != 0 {
		t.Errorf("unexpected rows for other user: %d", len(other))
	}
}

func TestGameLogRoundTrip(t *testing.T) {
	db := openMemDB(t)

	cg := &CachedGame{
		Log: &model.ParsedGameLog{
			ID:       "g1",
			Ballpark: "Sunny Yards",
			PAsYou: []model.PlateAppearance{
				{Inning: 1, Batter: "Trout", Pitcher: "Cole", Result: model.ResultHomeRun},
			},
			HRAllowedByYourPitcherLN: map[string]int{"cole": 1},
		},
		YouBox: model.BoxSide{Name: "Sharks", Runs: 3},
		OppBox: model.BoxSide{Name: "Comets", Runs: 1},
	}

	if _, ok, err := db.GetGameLog("jsmith99", "g1"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := db.PutGameLog("jsmith99", "g1", cg); err != nil {
		t.Fatalf("PutGameLog: %v", err)
	}

	got, ok, err := db.GetGameLog("jsmith99", "g1")
	if err != nil || !ok {
		t.Fatalf("GetGameLog: ok=%v err=%v", ok, err)
	}
	if got.Log.Ballpark != "Sunny Yards" || len(got.Log.PAsYou) != 1 {
		t.Errorf("round-tripped log = %+v", got.Log)
	}
	if got.Log.HRAllowedByYourPitcherLN["cole"] != 1 {
		t.Errorf("narrative map lost: %+v", got.Log.HRAllowedByYourPitcherLN)
	}
	if got.YouBox.Name != "Sharks" || got.OppBox.Runs != 1 {
		t.Errorf("box sides = %+v / %+v", got.YouBox, got.OppBox)
	}

	n, err := db.CountGameLogs("jsmith99")
	if err != nil || n != 1 {
		t.Errorf("CountGameLogs = %d (%v), want 1", n, err)
	}
}

func TestDropUser(t *testing.T) {
	db := openMemDB(t)

	if err := db.ReplaceHistory("jsmith99", "psn", "", sampleRows()); err != nil {
		t.Fatal(err)
	}
	if err := db.PutGameLog("jsmith99", "g1", &CachedGame{Log: &model.ParsedGameLog{ID: "g1"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceHistory("other", "psn", "", sampleRows()[:1]); err != nil {
		t.Fatal(err)
	}

	if err := db.DropUser("jsmith99"); err != nil {
		t.Fatalf("DropUser: %v", err)
	}

	rows, _ := db.ListHistory("jsmith99", "psn", "")
	if len(rows) != 0 {
		t.Errorf("history rows after drop = %d, want 0", len(rows))
	}
	if n, _ := db.CountGameLogs("jsmith99"); n != 0 {
		t.Errorf("game logs after drop = %d, want 0", n)
	}
	other, _ := db.ListHistory("other", "psn", "")
	if len(other) != 1 {
		t.Errorf("other user's rows = %d, want 1", len(other))
	}
}

func TestItemsSnapshotRoundTrip(t *testing.T) {
	db := openMemDB(t)

	if items, _, err := db.LoadItems(); err != nil || items != nil {
		t.Fatalf("expected empty snapshot, got %v / %v", items, err)
	}

	at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	want := []show.Item{{Name: "Mike Trout", BatHand: "R", Height: `6'2"`}}
	if err := db.SaveItems(want, at); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}

	items, gotAt, err := db.LoadItems()
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Mike Trout" {
		t.Errorf("items = %+v", items)
	}
	if !gotAt.Equal(at) {
		t.Errorf("fetchedAt = %v, want %v", gotAt, at)
	}

	// A second save replaces the snapshot.
	if err := db.SaveItems(nil, at.Add(time.Hour)); err != nil {
		t.Fatalf("SaveItems replace: %v", err)
	}
	items, gotAt, _ = db.LoadItems()
	if len(items) != 0 {
		t.Errorf("items after replace = %+v", items)
	}
	if !gotAt.Equal(at.Add(time.Hour)) {
		t.Errorf("fetchedAt after replace = %v", gotAt)
	}
}
