// Package report renders history, stat lines and insights as console tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/goldenbearlabs/showinsights/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintHistorySummary prints the one-line header above the history table.
func PrintHistorySummary(w io.Writer, username string, s model.HistorySummary) {
	fmt.Fprintf(w, "\n%s  |  Games: %d (online %d, vs CPU %d)  |  W-L: %d-%d  |  RF/RA: %d/%d\n\n",
		username, s.Games, s.Online, s.VsCPU, s.Wins, s.Losses, s.RunsFor, s.RunsAgainst)
}

// PrintHistoryTable prints the normalized game list, newest first.
func PrintHistoryTable(w io.Writer, games []model.GameRow) {
	table := newTable(w)
	table.Header("DATE", "MODE", "AWAY", "HOME", "SCORE", "YOU", "W/L")

	for _, g := range games {
		date := "—"
		if g.DateISO != "" {
			date = g.DateISO[:10]
		}
		result := "—"
		if g.YouAre != model.SideNone {
			switch {
			case g.YouRuns > g.OppRuns:
				result = "W"
			case g.YouRuns < g.OppRuns:
				result = "L"
			default:
				result = "T"
			}
		}
		you := "—"
		if g.YouAre != model.SideNone {
			you = g.YouAre.String()
		}
		table.Append(
			date,
			g.Mode,
			g.Away.Name,
			g.Home.Name,
			fmt.Sprintf("%d-%d", g.Away.Runs, g.Home.Runs),
			you,
			result,
		)
	}
	table.Render()
}

// PrintTeamStats prints your and the opponents' combined batting and
// pitching lines across the aggregated games.
func PrintTeamStats(w io.Writer, resp *model.AggregateResponse) {
	fmt.Fprintf(w, "\nAggregated over %d games\n\n", resp.GamesAggregated)

	bat := newTable(w)
	bat.Header("SIDE", "PA", "AB", "H", "2B", "3B", "HR", "BB", "SO", "R", "RBI", "AVG", "OBP", "SLG", "OPS")
	for _, row := range []struct {
		side string
		line model.BattingLine
	}{
		{"YOU", resp.YourStats.Batting},
		{"OPP", resp.OppStats.Batting},
	} {
		bat.Append(
			row.side,
			strconv.Itoa(row.line.PA),
			strconv.Itoa(row.line.AB),
			strconv.Itoa(row.line.H),
			strconv.Itoa(row.line.Doubles),
			strconv.Itoa(row.line.Triples),
			strconv.Itoa(row.line.HR),
			strconv.Itoa(row.line.BB),
			strconv.Itoa(row.line.SO),
			strconv.Itoa(row.line.R),
			strconv.Itoa(row.line.RBI),
			fmt.Sprintf("%.3f", row.line.AVG),
			fmt.Sprintf("%.3f", row.line.OBP),
			fmt.Sprintf("%.3f", row.line.SLG),
			fmt.Sprintf("%.3f", row.line.OPS),
		)
	}
	bat.Render()

	fmt.Fprintln(w)
	pit := newTable(w)
	pit.Header("SIDE", "IP", "H", "R", "ER", "BB", "SO", "HR", "ERA", "WHIP", "K/9", "BB/9", "OPS_AG")
	for _, row := range []struct {
		side string
		line model.PitchingLine
	}{
		{"YOU", resp.YourStats.Pitching},
		{"OPP", resp.OppStats.Pitching},
	} {
		pit.Append(
			row.side,
			fmt.Sprintf("%.1f", row.line.PitchingDerived.IP),
			strconv.Itoa(row.line.H),
			strconv.Itoa(row.line.R),
			strconv.Itoa(row.line.ER),
			strconv.Itoa(row.line.BB),
			strconv.Itoa(row.line.SO),
			strconv.Itoa(row.line.HR),
			fmt.Sprintf("%.2f", row.line.ERA),
			fmt.Sprintf("%.2f", row.line.WHIP),
			fmt.Sprintf("%.1f", row.line.K9),
			fmt.Sprintf("%.1f", row.line.BB9),
			fmt.Sprintf("%.3f", row.line.OPSAllowed),
		)
	}
	pit.Render()
}

// PrintInsights prints situational counters, strikeout taxonomies and the
// per-ballpark table.
func PrintInsights(w io.Writer, ins model.Insights) {
	fmt.Fprintf(w, "\nComeback wins: %d  |  Go-ahead events: %d  |  Perfect contact: %d for / %d against\n",
		ins.ComebackWins, ins.GoAheadEvents, ins.PerfectContactHitsYou, ins.PerfectContactHitsOpp)

	PrintStrikeoutBreakdown(w, "STRIKEOUTS (BATTING)", ins.StrikeoutsBatting)
	PrintStrikeoutBreakdown(w, "STRIKEOUTS (PITCHING)", ins.StrikeoutsPitching)

	if len(ins.Ballparks) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := newTable(w)
	table.Header("BALLPARK", "G", "W", "L", "RUNS", "HR", "OPS")
	for _, p := range ins.Ballparks {
		table.Append(
			p.Park,
			strconv.Itoa(p.Games),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Losses),
			strconv.Itoa(p.Runs),
			strconv.Itoa(p.HomeRuns),
			fmt.Sprintf("%.3f", p.OPS),
		)
	}
	table.Render()
}

// PrintStrikeoutBreakdown prints one side's strikeout taxonomy.
func PrintStrikeoutBreakdown(w io.Writer, label string, b model.StrikeoutBreakdown) {
	total := b.Total()
	if total == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s: %d total  |  swinging %d, looking %d, chasing %d\n",
		label, total, b.Swinging, b.Looking, b.Chase)
	fmt.Fprintf(w, "  by pitch:    %s\n", formatCountMap(b.ByPitch))
	fmt.Fprintf(w, "  by location: %s\n", formatCountMap(b.ByLocation))
}

// formatCountMap renders a count map as "k 3, k 2", largest first with
// name ties alphabetical.
func formatCountMap(m map[string]int) string {
	type kv struct {
		k string
		v int
	}
	pairs := make([]kv, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].v != pairs[j].v {
			return pairs[i].v > pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s %d", p.k, p.v))
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, ", ")
}

// PrintHitters prints the per-hitter leaderboard sorted by plate
// appearances. top <= 0 prints everyone.
func PrintHitters(w io.Writer, hitters map[string]*model.HitterAgg, top int) {
	rows := make([]*model.HitterAgg, 0, len(hitters))
	for _, h := range hitters {
		rows = append(rows, h)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PA != rows[j].PA {
			return rows[i].PA > rows[j].PA
		}
		return rows[i].Name < rows[j].Name
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	table := newTable(w)
	table.Header("HITTER", "PA", "AB", "H", "2B", "3B", "HR", "BB", "SO", "AVG", "OPS")
	for _, h := range rows {
		table.Append(
			h.Name,
			strconv.Itoa(h.PA),
			strconv.Itoa(h.AB),
			strconv.Itoa(h.H),
			strconv.Itoa(h.Doubles),
			strconv.Itoa(h.Triples),
			strconv.Itoa(h.HR),
			strconv.Itoa(h.BB),
			strconv.Itoa(h.SO),
			fmt.Sprintf("%.3f", h.AVG),
			fmt.Sprintf("%.3f", h.OPS),
		)
	}
	table.Render()
}

// PrintPitchers prints the per-pitcher leaderboard sorted by outs
// recorded. top <= 0 prints everyone.
func PrintPitchers(w io.Writer, pitchers map[string]*model.PitcherAgg, top int) {
	rows := make([]*model.PitcherAgg, 0, len(pitchers))
	for _, p := range pitchers {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Outs != rows[j].Outs {
			return rows[i].Outs > rows[j].Outs
		}
		return rows[i].Name < rows[j].Name
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	table := newTable(w)
	table.Header("PITCHER", "IP", "H", "ER", "BB", "SO", "HR", "HR+NARR", "ERA", "WHIP", "K/9")
	for _, p := range rows {
		table.Append(
			p.Name,
			fmt.Sprintf("%.1f", p.PitchingCounting.IP()),
			strconv.Itoa(p.H),
			strconv.Itoa(p.ER),
			strconv.Itoa(p.BB),
			strconv.Itoa(p.SO),
			strconv.Itoa(p.HR),
			strconv.Itoa(p.HRAllowedTotal),
			fmt.Sprintf("%.2f", p.ERA),
			fmt.Sprintf("%.2f", p.WHIP),
			fmt.Sprintf("%.1f", p.K9),
		)
	}
	table.Render()
}

// PrintVsPitcher prints your batting line against each opposing pitcher
// you faced, sorted by plate appearances.
func PrintVsPitcher(w io.Writer, vs map[string]*model.VsPitcherAgg, top int) {
	rows := make([]*model.VsPitcherAgg, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, v)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PA != rows[j].PA {
			return rows[i].PA > rows[j].PA
		}
		return rows[i].Name < rows[j].Name
	})
	if top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	table := newTable(w)
	table.Header("VS PITCHER", "PA", "AB", "H", "HR", "BB", "SO", "AVG", "OPS")
	for _, v := range rows {
		table.Append(
			v.Name,
			strconv.Itoa(v.PA),
			strconv.Itoa(v.AB),
			strconv.Itoa(v.H),
			strconv.Itoa(v.HR),
			strconv.Itoa(v.BB),
			strconv.Itoa(v.SO),
			fmt.Sprintf("%.3f", v.AVG),
			fmt.Sprintf("%.3f", v.OPS),
		)
	}
	table.Render()
}

// PrintBoxScore prints both teams' batter and pitcher lines for one game.
func PrintBoxScore(w io.Writer, you, opp model.BoxSide) {
	fmt.Fprintf(w, "\n%s %d, %s %d\n", you.Name, you.Runs, opp.Name, opp.Runs)

	for _, side := range []model.BoxSide{you, opp} {
		fmt.Fprintf(w, "\n%s batting\n", side.Name)
		bat := newTable(w)
		bat.Header("BATTER", "AB", "R", "H", "RBI", "BB", "SO", "HR")
		for _, b := range side.Batters {
			bat.Append(
				b.Name,
				strconv.Itoa(b.AB),
				strconv.Itoa(b.R),
				strconv.Itoa(b.H),
				strconv.Itoa(b.RBI),
				strconv.Itoa(b.BB),
				strconv.Itoa(b.SO),
				strconv.Itoa(b.HR),
			)
		}
		bat.Render()

		fmt.Fprintf(w, "\n%s pitching\n", side.Name)
		pit := newTable(w)
		pit.Header("PITCHER", "IP", "H", "R", "ER", "BB", "SO", "HR", "DEC")
		for _, p := range side.Pitchers {
			dec := p.Decision
			if dec == "" {
				dec = "—"
			}
			pit.Append(
				p.Name,
				fmt.Sprintf("%.1f", float64(p.Outs)/3.0),
				strconv.Itoa(p.H),
				strconv.Itoa(p.R),
				strconv.Itoa(p.ER),
				strconv.Itoa(p.BB),
				strconv.Itoa(p.SO),
				strconv.Itoa(p.HR),
				dec,
			)
		}
		pit.Render()
	}
}

// PrintSplitLine prints one recomputed split as a labeled batting line.
func PrintSplitLine(w io.Writer, label string, line model.BattingLine) {
	table := newTable(w)
	table.Header("SPLIT", "PA", "AB", "H", "2B", "3B", "HR", "BB", "SO", "AVG", "OBP", "SLG", "OPS")
	table.Append(
		label,
		strconv.Itoa(line.PA),
		strconv.Itoa(line.AB),
		strconv.Itoa(line.H),
		strconv.Itoa(line.Doubles),
		strconv.Itoa(line.Triples),
		strconv.Itoa(line.HR),
		strconv.Itoa(line.BB),
		strconv.Itoa(line.SO),
		fmt.Sprintf("%.3f", line.AVG),
		fmt.Sprintf("%.3f", line.OBP),
		fmt.Sprintf("%.3f", line.SLG),
		fmt.Sprintf("%.3f", line.OPS),
	)
	table.Render()
}
