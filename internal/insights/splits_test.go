package insights

import (
	"testing"

	"github.com/goldenbearlabs/showinsights/internal/model"
)

func splitAttrs() map[string]model.PlayerAttributes {
	return map[string]model.PlayerAttributes{
		"verlander": {Name: "Justin Verlander", ThrowHand: "R", MaxVelocity: 95.5},
		"sale":      {Name: "Chris Sale", ThrowHand: "L", IsOutlier: true, MaxVelocity: 98.2},
		"trout":     {Name: "Mike Trout", BatHand: "R", HeightInches: 74},
		"ohtani":    {Name: "Shohei Ohtani", BatHand: "S", HeightInches: 76},
	}
}

func splitLog() *model.ParsedGameLog {
	return &model.ParsedGameLog{
		ID:                "g1",
		HittingDifficulty: "All-Star",
		PAsYou: []model.PlateAppearance{
			{Inning: 1, OutsBefore: 0, Batter: "Trout", Pitcher: "Verlander", Result: model.ResultSingle},
			{Inning: 7, OutsBefore: 2, Batter: "Ohtani", Pitcher: "Verlander", Result: model.ResultHomeRun},
			{Inning: 9, OutsBefore: 1, Batter: "Ohtani", Pitcher: "Sale", Result: model.ResultStrikeout},
		},
	}
}

func TestBuildGameSplitsAnnotations(t *testing.T) {
	gs := BuildGameSplits(splitLog(), splitAttrs())

	if gs.GameID != "g1" || len(gs.PAs) != 3 {
		t.Fatalf("unexpected bundle: %+v", gs)
	}

	trout := gs.PAs[0]
	if trout.PitcherHand != "R" || trout.BatterSide != "R" || trout.BatterHeightIn != 74 {
		t.Errorf("Trout annotation = %+v", trout)
	}
	if trout.HittingDifficulty != "All-Star" {
		t.Errorf("difficulty = %q", trout.HittingDifficulty)
	}

	// Switch hitter vs a righty resolves to batting left.
	vsRighty := gs.PAs[1]
	if vsRighty.BatterSide != "L" {
		t.Errorf("Ohtani vs RHP side = %q, want L", vsRighty.BatterSide)
	}
	// And to batting right vs a lefty.
	vsLefty := gs.PAs[2]
	if vsLefty.BatterSide != "R" {
		t.Errorf("Ohtani vs LHP side = %q, want R", vsLefty.BatterSide)
	}
	if !vsLefty.PitcherOutlier || vsLefty.PitcherMaxVelo != 98.2 {
		t.Errorf("Sale annotation = %+v", vsLefty)
	}
}

func TestBuildGameSplitsUnknownPlayers(t *testing.T) {
	log := &model.ParsedGameLog{
		ID: "g2",
		PAsYou: []model.PlateAppearance{
			{Inning: 1, Batter: "Nobody", Pitcher: "Mystery", Result: model.ResultOut},
		},
	}
	gs := BuildGameSplits(log, splitAttrs())

	pa := gs.PAs[0]
	if pa.PitcherHand != "" || pa.BatterSide != "" || pa.BatterHeightIn != 0 {
		t.Errorf("unknown players should keep zero annotations: %+v", pa)
	}
}

func TestResolveBatterSideUnknownPitcherHand(t *testing.T) {
	if got := resolveBatterSide("S", ""); got != "S" {
		t.Errorf("switch hitter vs unknown hand = %q, want S", got)
	}
	if got := resolveBatterSide("L", "L"); got != "L" {
		t.Errorf("non-switch hitter must keep side, got %q", got)
	}
}

func TestFilterSplits(t *testing.T) {
	bundle := []model.GameSplits{BuildGameSplits(splitLog(), splitAttrs())}

	// Everything (outs -1 means any).
	all := FilterSplits(bundle, SplitFilter{Outs: -1})
	if all.PA != 3 {
		t.Fatalf("unfiltered PA = %d, want 3", all.PA)
	}

	vsLefty := FilterSplits(bundle, SplitFilter{Outs: -1, PitcherHand: "L"})
	if vsLefty.PA != 1 || vsLefty.SO != 1 {
		t.Errorf("vs LHP = %+v", vsLefty.BattingCounting)
	}

	late := FilterSplits(bundle, SplitFilter{Outs: -1, InningMin: 7})
	if late.PA != 2 || late.HR != 1 {
		t.Errorf("late innings = %+v", late.BattingCounting)
	}

	twoOuts := FilterSplits(bundle, SplitFilter{Outs: 2})
	if twoOuts.PA != 1 || twoOuts.HR != 1 {
		t.Errorf("two outs = %+v", twoOuts.BattingCounting)
	}

	hardThrowers := FilterSplits(bundle, SplitFilter{Outs: -1, MinVelocity: 98})
	if hardThrowers.PA != 1 {
		t.Errorf("min velocity = %+v", hardThrowers.BattingCounting)
	}

	tall := FilterSplits(bundle, SplitFilter{Outs: -1, MinHeightIn: 75})
	if tall.PA != 2 {
		t.Errorf("tall batters = %+v", tall.BattingCounting)
	}

	difficulty := FilterSplits(bundle, SplitFilter{Outs: -1, Difficulty: "all-star"})
	if difficulty.PA != 3 {
		t.Errorf("difficulty match should be case-insensitive: %+v", difficulty.BattingCounting)
	}
}
