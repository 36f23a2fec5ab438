// Package insights turns raw history records into normalized game rows
// and folds parsed game logs into aggregate statistics.
package insights

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/gamelog"
	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// CPUName is the sentinel the external API uses for a computer-controlled
// side. Classification hangs entirely on this literal: if the API ever
// renames it, every game would silently classify as online.
const CPUName = "cpu"

// displayDateLayout is the history record's date format, implicitly UTC.
const displayDateLayout = "01/02/2006 15:04:05"

// isoLayout renders dates the way the web client expects them.
const isoLayout = "2006-01-02T15:04:05.000Z"

var nonDigitRe = regexp.MustCompile(`[^0-9]`)

// parseNumeric strips non-digit characters and converts, defaulting to 0.
func parseNumeric(s string) int {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// ParseDisplayDate parses a MM/DD/YYYY HH:MM:SS display date as UTC.
// Unparseable input yields a zero time and an empty ISO string.
func ParseDisplayDate(s string) (time.Time, string) {
	t, err := time.Parse(displayDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ""
	}
	t = t.UTC()
	return t, t.Format(isoLayout)
}

// displayTeamName prefers the full team name over the short handle.
func displayTeamName(full, short string) string {
	full = strings.TrimSpace(gamelog.StripCodes(full))
	if full != "" {
		return full
	}
	return strings.TrimSpace(gamelog.StripCodes(short))
}

// NormalizeRow converts one raw history record into a canonical GameRow.
// The same input always yields the same row.
func NormalizeRow(raw show.RawGame, username string) model.GameRow {
	row := model.GameRow{
		ID:   raw.ID,
		Mode: strings.TrimSpace(raw.GameMode),
		Home: model.SideLine{
			Name:   displayTeamName(raw.HomeFullName, raw.HomeName),
			Runs:   parseNumeric(raw.HomeRuns),
			Hits:   parseNumeric(raw.HomeHits),
			Errors: parseNumeric(raw.HomeErrors),
			Result: strings.TrimSpace(raw.HomeResult),
		},
		Away: model.SideLine{
			Name:   displayTeamName(raw.AwayFullName, raw.AwayName),
			Runs:   parseNumeric(raw.AwayRuns),
			Hits:   parseNumeric(raw.AwayHits),
			Errors: parseNumeric(raw.AwayErrors),
			Result: strings.TrimSpace(raw.AwayResult),
		},
	}
	row.Date, row.DateISO = ParseDisplayDate(raw.DisplayDate)

	userNorm := gamelog.Normalize(username)
	homeCPU := gamelog.Normalize(raw.HomeName) == CPUName
	awayCPU := gamelog.Normalize(raw.AwayName) == CPUName

	// The game is vs-CPU only when both sides carry the sentinel; a single
	// CPU side still means the user played someone's computer-managed team
	// online. Preserved as-is from the source system.
	row.IsCPU = homeCPU && awayCPU
	row.IsOnline = !row.IsCPU

	switch {
	case homeCPU && !awayCPU:
		row.YouAre = model.SideAway
	case awayCPU && !homeCPU:
		row.YouAre = model.SideHome
	case userNorm != "" && strings.Contains(gamelog.Normalize(raw.HomeName), userNorm):
		row.YouAre = model.SideHome
	case userNorm != "" && strings.Contains(gamelog.Normalize(raw.AwayName), userNorm):
		row.YouAre = model.SideAway
	default:
		row.YouAre = model.SideNone
	}

	switch row.YouAre {
	case model.SideHome:
		row.YouRuns, row.OppRuns = row.Home.Runs, row.Away.Runs
	case model.SideAway:
		row.YouRuns, row.OppRuns = row.Away.Runs, row.Home.Runs
	}
	return row
}
