package insights

import (
	"testing"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// rawGame builds a minimal history record.
func rawGame(id, date, home, away, homeRuns, awayRuns string) show.RawGame {
	return show.RawGame{
		ID:          id,
		DisplayDate: date,
		GameMode:    "Battle Royale",
		HomeName:    home,
		AwayName:    away,
		HomeRuns:    homeRuns,
		AwayRuns:    awayRuns,
	}
}

func TestNormalizeRowUserByName(t *testing.T) {
	raw := rawGame("g1", "07/04/2025 18:30:00", "sluggers", "jsmith99", "2", "5")
	row := NormalizeRow(raw, "jsmith99")

	if row.YouAre != model.SideAway {
		t.Fatalf("YouAre = %v, want away", row.YouAre)
	}
	if row.IsCPU || !row.IsOnline {
		t.Errorf("IsCPU/IsOnline = %v/%v, want false/true", row.IsCPU, row.IsOnline)
	}
	if row.YouRuns != 5 || row.OppRuns != 2 {
		t.Errorf("runs = %d/%d, want 5/2", row.YouRuns, row.OppRuns)
	}
	if row.DateISO != "2025-07-04T18:30:00.000Z" {
		t.Errorf("DateISO = %q", row.DateISO)
	}
}

func TestNormalizeRowSingleCPUSide(t *testing.T) {
	// One CPU side means online; the user is assumed to be the other side
	// even when the name doesn't contain the username.
	raw := rawGame("g2", "07/04/2025 12:00:00", "CPU", "SomeClub", "3", "1")
	row := NormalizeRow(raw, "jsmith99")

	if row.IsCPU {
		t.Error("single CPU side should not classify as vs-CPU")
	}
	if !row.IsOnline {
		t.Error("single CPU side should classify as online")
	}
	if row.YouAre != model.SideAway {
		t.Errorf("YouAre = %v, want away", row.YouAre)
	}
}

func TestNormalizeRowBothCPU(t *testing.T) {
	raw := rawGame("g3", "07/04/2025 12:00:00", "CPU", "CPU", "3", "1")

	row := NormalizeRow(raw, "jsmith99")
	if !row.IsCPU || row.IsOnline {
		t.Errorf("IsCPU/IsOnline = %v/%v, want true/false", row.IsCPU, row.IsOnline)
	}
	if row.YouAre != model.SideNone {
		t.Errorf("YouAre = %v, want none", row.YouAre)
	}

	// A username that itself normalizes to the CPU sentinel still matches.
	row = NormalizeRow(raw, "CPU")
	if row.YouAre != model.SideHome {
		t.Errorf("YouAre = %v, want home for CPU username", row.YouAre)
	}
}

func TestNormalizeRowIdempotent(t *testing.T) {
	raw := rawGame("g4", "01/02/2025 03:04:05", "jsmith99", "rival", "7", "7")
	a := NormalizeRow(raw, "jsmith99")
	b := NormalizeRow(raw, "jsmith99")
	if a != b {
		t.Errorf("normalization not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestNormalizeRowPermissiveNumbers(t *testing.T) {
	raw := rawGame("g5", "garbage date", "jsmith99", "rival", " 4 ", "n/a")
	row := NormalizeRow(raw, "jsmith99")

	if row.Home.Runs != 4 {
		t.Errorf("Home.Runs = %d, want 4", row.Home.Runs)
	}
	if row.Away.Runs != 0 {
		t.Errorf("Away.Runs = %d, want 0", row.Away.Runs)
	}
	if !row.Date.IsZero() || row.DateISO != "" {
		t.Errorf("bad date should normalize to zero, got %v %q", row.Date, row.DateISO)
	}
}

func TestPartitionIsExclusive(t *testing.T) {
	raws := []show.RawGame{
		rawGame("a", "07/01/2025 10:00:00", "CPU", "CPU", "1", "0"),
		rawGame("b", "07/02/2025 10:00:00", "jsmith99", "rival", "2", "3"),
		rawGame("c", "07/03/2025 10:00:00", "CPU", "jsmith99", "0", "4"),
	}
	resp := BuildHistory(raws, "jsmith99")

	for _, g := range resp.Games {
		if g.IsCPU == g.IsOnline {
			t.Errorf("game %s: IsCPU and IsOnline must be exclusive, got %v/%v",
				g.ID, g.IsCPU, g.IsOnline)
		}
	}
	if resp.Summary.Online != 2 || resp.Summary.VsCPU != 1 {
		t.Errorf("summary online/vsCPU = %d/%d, want 2/1",
			resp.Summary.Online, resp.Summary.VsCPU)
	}
}

func TestBuildHistorySortsNewestFirstNullsLast(t *testing.T) {
	raws := []show.RawGame{
		rawGame("old", "01/01/2025 00:00:00", "jsmith99", "x", "1", "0"),
		rawGame("undated", "???", "jsmith99", "x", "1", "0"),
		rawGame("new", "06/01/2025 00:00:00", "jsmith99", "x", "1", "0"),
	}
	resp := BuildHistory(raws, "jsmith99")

	gotOrder := []string{resp.Games[0].ID, resp.Games[1].ID, resp.Games[2].ID}
	want := []string{"new", "old", "undated"}
	for i := range want {
		if gotOrder[i] != want[i] {
			t.Fatalf("order = %v, want %v", gotOrder, want)
		}
	}

	// Adjacent dated games never appear older-before-newer.
	for i := 0; i+1 < len(resp.Games); i++ {
		a, b := resp.Games[i], resp.Games[i+1]
		if !a.Date.IsZero() && !b.Date.IsZero() && a.Date.Before(b.Date) {
			t.Errorf("games %s and %s out of order", a.ID, b.ID)
		}
		if a.Date.IsZero() && !b.Date.IsZero() {
			t.Errorf("undated game %s sorted before dated %s", a.ID, b.ID)
		}
	}
}

func TestBuildHistorySummaryCounts(t *testing.T) {
	raws := []show.RawGame{
		rawGame("w", "07/01/2025 10:00:00", "jsmith99", "r", "5", "2"),
		rawGame("l", "07/02/2025 10:00:00", "jsmith99", "r", "1", "2"),
		rawGame("t", "07/03/2025 10:00:00", "jsmith99", "r", "3", "3"),
		rawGame("unknown", "07/04/2025 10:00:00", "someone", "else", "9", "0"),
	}
	resp := BuildHistory(raws, "jsmith99")
	s := resp.Summary

	if s.Games != 4 {
		t.Errorf("Games = %d, want 4", s.Games)
	}
	if s.Wins != 1 || s.Losses != 1 {
		t.Errorf("W-L = %d-%d, want 1-1", s.Wins, s.Losses)
	}
	if s.RunsFor != 9 || s.RunsAgainst != 7 {
		t.Errorf("RF/RA = %d/%d, want 9/7", s.RunsFor, s.RunsAgainst)
	}
}

func TestSelectGames(t *testing.T) {
	games := []model.GameRow{
		{ID: "1", IsOnline: true, Mode: "Arena"},
		{ID: "2", IsCPU: true, Mode: "Exhibition"},
		{ID: "3", IsOnline: true, Mode: "Battle Royale"},
	}

	if got := SelectGames(games, FilterOnline, 0); len(got) != 2 {
		t.Errorf("online = %d games, want 2", len(got))
	}
	if got := SelectGames(games, FilterVsCPU, 0); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("vscpu = %+v, want game 2", got)
	}
	if got := SelectGames(games, FilterArena, 0); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("arena = %+v, want game 1", got)
	}
	if got := SelectGames(games, FilterAll, 2); len(got) != 2 {
		t.Errorf("limit = %d games, want 2", len(got))
	}
}

func TestParseFilterRejectsUnknown(t *testing.T) {
	if _, err := ParseFilter("ranked"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if f, err := ParseFilter(""); err != nil || f != FilterAll {
		t.Errorf("empty filter = %v/%v, want all/nil", f, err)
	}
}
