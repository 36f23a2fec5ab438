package insights

import (
	"context"
	"fmt"
	"sort"

	"github.com/goldenbearlabs/showinsights/internal/gamelog"
	"github.com/goldenbearlabs/showinsights/internal/gate"
	"github.com/goldenbearlabs/showinsights/internal/model"
)

// defaultAggConcurrency bounds concurrent game-log loads.
const defaultAggConcurrency = 12

// LoadedGame is one game's parsed log plus its box-score sides, oriented
// from the tracked user's point of view.
type LoadedGame struct {
	Row    model.GameRow
	Log    *model.ParsedGameLog
	YouBox model.BoxSide
	OppBox model.BoxSide
}

// GameLoader fetches and parses one game's log. Implementations are
// expected to hit a local cache first and the remote API on a miss.
type GameLoader func(ctx context.Context, row model.GameRow) (*LoadedGame, error)

// AggregateOptions shapes one aggregation run.
type AggregateOptions struct {
	Filter        Filter
	Limit         int
	Concurrency   int // <= 0 means defaultAggConcurrency
	IncludeSplits bool
	// Attributes is the last-name-keyed player index used to annotate the
	// split bundle. Ignored unless IncludeSplits is set.
	Attributes map[string]model.PlayerAttributes
}

// ballparkAcc is the per-park accumulator. The batting record only feeds
// the park OPS and is dropped at finalization.
type ballparkAcc struct {
	games   int
	wins    int
	losses  int
	runs    int
	hr      int
	batting model.BattingCounting
}

// Aggregate selects games from the history, loads their logs with bounded
// concurrency and folds them into a fresh AggregateResponse. Any load
// failure aborts the whole run; there are no partial results. The fold
// itself is single threaded and order independent.
func Aggregate(ctx context.Context, games []model.GameRow, opts AggregateOptions, load GameLoader) (*model.AggregateResponse, error) {
	selected := SelectGames(games, opts.Filter, opts.Limit)

	loaded, err := loadAll(ctx, selected, opts.Concurrency, load)
	if err != nil {
		return nil, err
	}

	resp := &model.AggregateResponse{
		GamesAggregated: len(loaded),
		Hitters:         make(map[string]*model.HitterAgg),
		Pitchers:        make(map[string]*model.PitcherAgg),
		VsPitcher:       make(map[string]*model.VsPitcherAgg),
	}
	resp.YourInsights.StrikeoutsBatting = model.NewStrikeoutBreakdown()
	resp.YourInsights.StrikeoutsPitching = model.NewStrikeoutBreakdown()

	var yourBat, oppBat model.BattingCounting
	var yourPitch, oppPitch model.PitchingCounting
	parks := make(map[string]*ballparkAcc)

	for _, g := range loaded {
		foldGame(g, &yourBat, &oppBat, &yourPitch, &oppPitch, &resp.YourInsights, parks, resp)
		if opts.IncludeSplits {
			resp.SplitBundle = append(resp.SplitBundle, BuildGameSplits(g.Log, opts.Attributes))
		}
	}

	finalize(resp, yourBat, oppBat, yourPitch, oppPitch, parks)
	return resp, nil
}

// loadAll fetches every selected game's log concurrently. Results keep
// the selection order; the first error wins and names its game.
func loadAll(ctx context.Context, rows []model.GameRow, concurrency int, load GameLoader) ([]*LoadedGame, error) {
	if concurrency <= 0 {
		concurrency = defaultAggConcurrency
	}
	g := gate.New(concurrency)

	type result struct {
		idx int
		lg  *LoadedGame
		err error
	}
	results := make(chan result, len(rows))
	for i, row := range rows {
		go func(idx int, row model.GameRow) {
			if err := g.Acquire(ctx); err != nil {
				results <- result{idx: idx, err: err}
				return
			}
			defer g.Release()
			lg, err := load(ctx, row)
			if err != nil {
				err = fmt.Errorf("game %s: %w", row.ID, err)
			}
			results <- result{idx: idx, lg: lg, err: err}
		}(i, row)
	}

	loaded := make([]*LoadedGame, len(rows))
	var firstErr error
	for range rows {
		r := <-results
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		loaded[r.idx] = r.lg
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return loaded, nil
}

func foldGame(g *LoadedGame, yourBat, oppBat *model.BattingCounting, yourPitch, oppPitch *model.PitchingCounting, ins *model.Insights, parks map[string]*ballparkAcc, resp *model.AggregateResponse) {
	log := g.Log

	var gameBat model.BattingCounting
	for _, pa := range log.PAsYou {
		gameBat.AddResult(pa.Result)
		foldHitter(resp, pa)
		foldVsPitcher(resp, pa)
	}
	gameBat.R = g.YouBox.Runs
	for _, b := range g.YouBox.Batters {
		gameBat.RBI += b.RBI
	}
	yourBat.Add(gameBat)

	var oppGameBat model.BattingCounting
	for _, pa := range log.PAsOpp {
		oppGameBat.AddResult(pa.Result)
	}
	oppGameBat.R = g.OppBox.Runs
	for _, b := range g.OppBox.Batters {
		oppGameBat.RBI += b.RBI
	}
	oppBat.Add(oppGameBat)

	for _, p := range g.YouBox.Pitchers {
		line := pitcherCounting(p)
		yourPitch.Add(line)
		foldPitcher(resp, p, log.HRAllowedByYourPitcherLN)
	}
	for _, p := range g.OppBox.Pitchers {
		oppPitch.Add(pitcherCounting(p))
	}

	// Comeback: trailing or tied through seven innings, won anyway.
	if g.YouBox.Runs > g.OppBox.Runs && runsThrough(log.RunsByInningYou, 7) <= runsThrough(log.RunsByInningOpp, 7) {
		ins.ComebackWins++
	}
	ins.GoAheadEvents += log.GoAheadEvents
	ins.PerfectContactHitsYou += log.PerfectContactHitsYou
	ins.PerfectContactHitsOpp += log.PerfectContactHitsOpp
	ins.StrikeoutsBatting.Add(log.Batting.Strikeouts)
	ins.StrikeoutsPitching.Add(log.Pitching.Strikeouts)

	park := log.Ballpark
	if park == "" {
		park = "Unknown"
	}
	acc := parks[park]
	if acc == nil {
		acc = &ballparkAcc{}
		parks[park] = acc
	}
	acc.games++
	acc.runs += g.YouBox.Runs
	acc.hr += gameBat.HR
	acc.batting.Add(gameBat)
	switch {
	case g.YouBox.Runs > g.OppBox.Runs:
		acc.wins++
	case g.YouBox.Runs < g.OppBox.Runs:
		acc.losses++
	}
}

func foldHitter(resp *model.AggregateResponse, pa model.PlateAppearance) {
	if pa.Batter == "" {
		return
	}
	h := resp.Hitters[pa.Batter]
	if h == nil {
		h = &model.HitterAgg{Name: pa.Batter}
		resp.Hitters[pa.Batter] = h
	}
	h.AddResult(pa.Result)
}

func foldVsPitcher(resp *model.AggregateResponse, pa model.PlateAppearance) {
	if pa.Pitcher == "" {
		return
	}
	v := resp.VsPitcher[pa.Pitcher]
	if v == nil {
		v = &model.VsPitcherAgg{Name: pa.Pitcher}
		resp.VsPitcher[pa.Pitcher] = v
	}
	v.AddResult(pa.Result)
}

func foldPitcher(resp *model.AggregateResponse, line model.PitcherLine, narrativeHR map[string]int) {
	if line.Name == "" {
		return
	}
	p := resp.Pitchers[line.Name]
	if p == nil {
		p = &model.PitcherAgg{Name: line.Name}
		resp.Pitchers[line.Name] = p
	}
	p.PitchingCounting.Add(pitcherCounting(line))
	p.NarrativeHR += narrativeHR[gamelog.LastNameLower(line.Name)]
}

func pitcherCounting(p model.PitcherLine) model.PitchingCounting {
	return model.PitchingCounting{
		Outs: p.Outs,
		H:    p.H,
		R:    p.R,
		ER:   p.ER,
		BB:   p.BB,
		SO:   p.SO,
		HR:   p.HR,
	}
}

// runsThrough sums the first n inning entries.
func runsThrough(innings []int, n int) int {
	total := 0
	for i, r := range innings {
		if i >= n {
			break
		}
		total += r
	}
	return total
}

// finalize runs the derived-stat pass over every accumulator and renders
// the ballpark table, dropping the intermediate park batting records.
func finalize(resp *model.AggregateResponse, yourBat, oppBat model.BattingCounting, yourPitch, oppPitch model.PitchingCounting, parks map[string]*ballparkAcc) {
	resp.YourStats.Batting = model.FinalizeBatting(yourBat)
	resp.YourStats.Pitching = model.FinalizePitching(yourPitch)
	resp.OppStats.Batting = model.FinalizeBatting(oppBat)
	resp.OppStats.Pitching = model.FinalizePitching(oppPitch)

	for _, h := range resp.Hitters {
		h.BattingDerived = model.DeriveBatting(h.BattingCounting)
	}
	for _, p := range resp.Pitchers {
		p.PitchingDerived = model.DerivePitching(p.PitchingCounting)
		p.HRAllowedTotal = p.HR + p.NarrativeHR
	}
	for _, v := range resp.VsPitcher {
		v.BattingDerived = model.DeriveBatting(v.BattingCounting)
	}

	lines := make([]model.BallparkLine, 0, len(parks))
	for name, acc := range parks {
		lines = append(lines, model.BallparkLine{
			Park:     name,
			Games:    acc.games,
			Wins:     acc.wins,
			Losses:   acc.losses,
			Runs:     acc.runs,
			HomeRuns: acc.hr,
			OPS:      model.DeriveBatting(acc.batting).OPS,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Games != lines[j].Games {
			return lines[i].Games > lines[j].Games
		}
		return lines[i].Park < lines[j].Park
	})
	resp.YourInsights.Ballparks = lines
}
