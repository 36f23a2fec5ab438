package insights

import (
	"strings"

	"github.com/goldenbearlabs/showinsights/internal/gamelog"
	"github.com/goldenbearlabs/showinsights/internal/model"
)

// BuildGameSplits annotates the user's batting plate appearances from one
// game with player attributes so they can be re-filtered without another
// aggregation pass. Attributes are looked up by lowercased last name;
// unknown players keep zero-value annotations.
func BuildGameSplits(log *model.ParsedGameLog, attrs map[string]model.PlayerAttributes) model.GameSplits {
	gs := model.GameSplits{
		GameID:            log.ID,
		HittingDifficulty: log.HittingDifficulty,
		PAs:               make([]model.SplitPA, 0, len(log.PAsYou)),
	}
	for _, pa := range log.PAsYou {
		sp := model.SplitPA{
			PlateAppearance:   pa,
			HittingDifficulty: log.HittingDifficulty,
		}
		pitcher, pitcherKnown := attrs[gamelog.LastNameLower(pa.Pitcher)]
		if pitcherKnown {
			sp.PitcherHand = pitcher.ThrowHand
			sp.PitcherOutlier = pitcher.IsOutlier
			sp.PitcherMaxVelo = pitcher.MaxVelocity
		}
		if batter, ok := attrs[gamelog.LastNameLower(pa.Batter)]; ok {
			sp.BatterHeightIn = batter.HeightInches
			sp.BatterSide = resolveBatterSide(batter.BatHand, sp.PitcherHand)
		}
		gs.PAs = append(gs.PAs, sp)
	}
	return gs
}

// resolveBatterSide resolves a switch hitter against the specific
// opposing pitcher: they bat left against a righty and right against a
// lefty. When the pitcher's hand is unknown the "S" marker is kept.
func resolveBatterSide(batHand, pitcherHand string) string {
	if batHand != "S" {
		return batHand
	}
	switch pitcherHand {
	case "R":
		return "L"
	case "L":
		return "R"
	}
	return "S"
}

// SplitFilter selects plate appearances from a split bundle. Zero values
// mean "no constraint" for every field.
type SplitFilter struct {
	PitcherHand string // "R" or "L"
	BatterSide  string // resolved side, "R" or "L"
	InningMin   int
	InningMax   int
	Outs        int // -1 for any, otherwise 0..2
	Difficulty  string
	OutlierOnly bool
	MinVelocity float64
	MinHeightIn int
	MaxHeightIn int
}

func (f SplitFilter) matches(pa model.SplitPA) bool {
	if f.PitcherHand != "" && pa.PitcherHand != f.PitcherHand {
		return false
	}
	if f.BatterSide != "" && pa.BatterSide != f.BatterSide {
		return false
	}
	if f.InningMin > 0 && pa.Inning < f.InningMin {
		return false
	}
	if f.InningMax > 0 && pa.Inning > f.InningMax {
		return false
	}
	if f.Outs >= 0 && pa.OutsBefore != f.Outs {
		return false
	}
	if f.Difficulty != "" && !strings.EqualFold(pa.HittingDifficulty, f.Difficulty) {
		return false
	}
	if f.OutlierOnly && !pa.PitcherOutlier {
		return false
	}
	if f.MinVelocity > 0 && pa.PitcherMaxVelo < f.MinVelocity {
		return false
	}
	if f.MinHeightIn > 0 && pa.BatterHeightIn < f.MinHeightIn {
		return false
	}
	if f.MaxHeightIn > 0 && (pa.BatterHeightIn == 0 || pa.BatterHeightIn > f.MaxHeightIn) {
		return false
	}
	return true
}

// FilterSplits recomputes a batting line from the plate appearances in
// the bundle that match the filter.
func FilterSplits(bundle []model.GameSplits, f SplitFilter) model.BattingLine {
	var c model.BattingCounting
	for _, gs := range bundle {
		for _, pa := range gs.PAs {
			if f.matches(pa) {
				c.AddResult(pa.Result)
			}
		}
	}
	return model.FinalizeBatting(c)
}
