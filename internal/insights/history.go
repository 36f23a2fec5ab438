package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// Filter narrows a game list before aggregation.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterOnline     Filter = "online"
	FilterVsCPU      Filter = "vscpu"
	FilterArena      Filter = "arena"
	FilterExhibition Filter = "exhibition"
)

// ParseFilter validates a user-supplied filter name.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOnline, FilterVsCPU, FilterArena, FilterExhibition:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, online, vscpu, arena or exhibition)", s)
}

func (f Filter) matches(row model.GameRow) bool {
	switch f {
	case FilterOnline:
		return row.IsOnline
	case FilterVsCPU:
		return row.IsCPU
	case FilterArena:
		return strings.Contains(strings.ToLower(row.Mode), "arena")
	case FilterExhibition:
		return strings.Contains(strings.ToLower(row.Mode), "exhibition")
	}
	return true
}

// BuildHistory normalizes raw records, sorts them newest first with
// undated rows last, and computes the win/loss summary.
func BuildHistory(raws []show.RawGame, username string) *model.InsightsResponse {
	games := make([]model.GameRow, 0, len(raws))
	for _, raw := range raws {
		games = append(games, NormalizeRow(raw, username))
	}
	SortGames(games)

	return &model.InsightsResponse{
		Username: username,
		Games:    games,
		Summary:  Summarize(games),
	}
}

// Summarize recounts the history summary from normalized rows. Rows whose
// side is unknown still count as games but contribute no win, loss or runs.
func Summarize(games []model.GameRow) model.HistorySummary {
	var s model.HistorySummary
	s.Games = len(games)
	for _, g := range games {
		if g.IsCPU {
			s.VsCPU++
		} else {
			s.Online++
		}
		if g.YouAre == model.SideNone {
			continue
		}
		s.RunsFor += g.YouRuns
		s.RunsAgainst += g.OppRuns
		switch {
		case g.YouRuns > g.OppRuns:
			s.Wins++
		case g.YouRuns < g.OppRuns:
			s.Losses++
		}
	}
	return s
}

// SortGames orders games by date descending. Rows without a parseable
// date sort after every dated row; ties keep their incoming order.
func SortGames(games []model.GameRow) {
	sort.SliceStable(games, func(i, j int) bool {
		di, dj := games[i].Date, games[j].Date
		if di.IsZero() {
			return false
		}
		if dj.IsZero() {
			return true
		}
		return di.After(dj)
	})
}

// SelectGames applies the filter, then caps the list at limit entries.
// A non-positive limit means no cap.
func SelectGames(games []model.GameRow, f Filter, limit int) []model.GameRow {
	out := make([]model.GameRow, 0, len(games))
	for _, g := range games {
		if f.matches(g) {
			out = append(out, g)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
