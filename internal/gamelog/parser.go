// Package gamelog parses the free-text play-by-play transcript of a
// single game into structured plate-appearance events, strikeout
// taxonomies, ballpark/difficulty metadata, and box-score sides.
//
// The upstream text format is not contractually stable, so every
// extraction heuristic lives behind a named function with an explicit
// fallback value. A malformed sentence never fails a whole-game parse.
package gamelog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// formattingRe matches the engine's caret-delimited color/style tokens,
// e.g. "^c:FFD700^" or "^n^".
var formattingRe = regexp.MustCompile(`\^[^^\s]{0,24}\^`)

// StripCodes removes caret-delimited formatting tokens from s.
func StripCodes(s string) string {
	return formattingRe.ReplaceAllString(s, "")
}

// Normalize lowercases s, strips formatting codes and collapses
// whitespace, for case/whitespace-insensitive name comparison.
func Normalize(s string) string {
	s = StripCodes(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// LastNameLower returns the lowercased final whitespace token of a
// player name, or "" for an empty name.
func LastNameLower(name string) string {
	fields := strings.Fields(StripCodes(name))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[len(fields)-1])
}

// rosterPrefixRe matches roster-order prefixes like "a-", "b-" or "3-".
var rosterPrefixRe = regexp.MustCompile(`^([a-z]|\d+)-`)

// decisionSuffixRe matches trailing pitcher decision tags like "(W)",
// "(L, 2-1)" or "(S)".
var decisionSuffixRe = regexp.MustCompile(`\s*\(([WLS])(?:,[^)]*)?\)$`)

// CleanPlayerName strips formatting codes, roster-order prefixes and
// trailing decision decoration from a box-score player name. The second
// return value is the decision letter ("W", "L", "S") when one was present.
func CleanPlayerName(name string) (string, string) {
	name = strings.TrimSpace(StripCodes(name))
	name = rosterPrefixRe.ReplaceAllString(name, "")
	decision := ""
	if m := decisionSuffixRe.FindStringSubmatch(name); m != nil {
		decision = m[1]
		name = strings.TrimSpace(decisionSuffixRe.ReplaceAllString(name, ""))
	}
	return name, decision
}

// ---- Metadata heuristics ----

// ballparkKeywords are stadium-type words that mark a ballpark line.
var ballparkKeywords = []string{
	"Stadium", "Park", "Field", "Coliseum", "Dome", "Yard", "Grounds", "Centre",
}

// extractBallpark scans lines for a stadium-type keyword; failing that it
// takes the line immediately preceding a "Weather:" line. Returns "" when
// neither heuristic matches.
func extractBallpark(text string) string {
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) > 60 {
			continue
		}
		for _, kw := range ballparkKeywords {
			if strings.Contains(trimmed, kw) {
				return strings.TrimSuffix(trimmed, ".")
			}
		}
	}
	for i, line := range lines {
		if strings.Contains(line, "Weather:") && i > 0 {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" {
				return strings.TrimSuffix(prev, ".")
			}
		}
	}
	return ""
}

var (
	hittingDifficultyRe  = regexp.MustCompile(`(?i)hitting difficulty (?:is|was|:)\s*([^.\n]+)`)
	pitchingDifficultyRe = regexp.MustCompile(`(?i)pitching difficulty (?:is|was|:)\s*([^.\n]+)`)
)

// extractDifficulties pulls the hitting/pitching difficulty labels out of
// the fixed sentence template. Missing labels come back as "".
func extractDifficulties(text string) (hitting, pitching string) {
	if m := hittingDifficultyRe.FindStringSubmatch(text); m != nil {
		hitting = strings.TrimSpace(m[1])
	}
	if m := pitchingDifficultyRe.FindStringSubmatch(text); m != nil {
		pitching = strings.TrimSpace(m[1])
	}
	return hitting, pitching
}

// goAheadRe matches the lead-change markers the transcript emits.
var goAheadRe = regexp.MustCompile(`(?i)\b(?:takes? the lead|go-ahead)\b`)

// countGoAheadEvents counts lead-change markers in the whole transcript.
func countGoAheadEvents(text string) int {
	return len(goAheadRe.FindAllString(text, -1))
}

// ---- Plate-appearance heuristics ----

// narrativeVerbs are the verbs that can follow a batter's name in a
// plate-appearance sentence.
var narrativeVerbs = map[string]bool{
	"singled": true, "doubled": true, "tripled": true, "homered": true,
	"walked": true, "struck": true, "grounded": true, "flied": true,
	"flew": true, "lined": true, "popped": true, "reached": true,
	"fouled": true, "sacrificed": true, "bunted": true, "was": true,
	"hit": true,
}

// batterFromLine extracts the candidate batter name preceding the first
// narrative verb. Returns "" when no verb is found or the leading tokens
// don't look like a name.
func batterFromLine(line string) string {
	words := strings.Fields(line)
	for i, w := range words {
		if !narrativeVerbs[strings.ToLower(w)] {
			continue
		}
		if i == 0 || i > 4 {
			return ""
		}
		name := strings.Join(words[:i], " ")
		if name == "" || name[0] < 'A' || name[0] > 'Z' {
			return ""
		}
		return name
	}
	return ""
}

// resultMatcher pairs a result code with its keyword test.
type resultMatcher struct {
	result   string
	keywords []string
}

// resultMatchers is the priority-ordered keyword table for classifying a
// plate-appearance line. The first match wins.
var resultMatchers = []resultMatcher{
	{model.ResultHomeRun, []string{"homered", "home run"}},
	{model.ResultTriple, []string{"tripled", "triple"}},
	{model.ResultDouble, []string{"doubled"}},
	{model.ResultDoublePlay, []string{"double play"}},
	{model.ResultWalk, []string{"walked"}},
	{model.ResultHitByPitch, []string{"hit by"}},
	{model.ResultSacFly, []string{"sacrifice fly"}},
	{model.ResultSacBunt, []string{"sacrifice bunt", "sac bunt"}},
	{model.ResultSingle, []string{"singled"}},
	{model.ResultStrikeout, []string{"struck out"}},
	{model.ResultOut, []string{
		"grounded out", "grounded into", "flied out", "flew out",
		"lined out", "popped out", "fouled out", "batted out",
		"reached on", "out at",
	}},
}

// classifyResult maps a plate-appearance line to a result code, or ""
// when no keyword matches.
func classifyResult(line string) string {
	lower := strings.ToLower(line)
	for _, m := range resultMatchers {
		for _, kw := range m.keywords {
			if strings.Contains(lower, kw) {
				return m.result
			}
		}
	}
	return ""
}

// pitchTypeKeywords map narrative fragments to pitch-type labels.
var pitchTypeKeywords = []struct{ keyword, label string }{
	{"four-seam", "4-seam fastball"},
	{"two-seam", "2-seam fastball"},
	{"fastball", "fastball"},
	{"sinker", "sinker"},
	{"cutter", "cutter"},
	{"slider", "slider"},
	{"sweeper", "sweeper"},
	{"knuckle curve", "knuckle curve"},
	{"curveball", "curveball"},
	{"curve", "curveball"},
	{"changeup", "changeup"},
	{"change-up", "changeup"},
	{"splitter", "splitter"},
	{"screwball", "screwball"},
	{"knuckleball", "knuckleball"},
}

// pitchTypeFromLine labels the pitch that ended a strikeout, defaulting
// to "unknown".
func pitchTypeFromLine(line string) string {
	lower := strings.ToLower(line)
	for _, k := range pitchTypeKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.label
		}
	}
	return "unknown"
}

// locationKeywords map narrative fragments to location labels. Compound
// locations come before their single-word components.
var locationKeywords = []struct{ keyword, label string }{
	{"up and in", "up and in"},
	{"up and away", "up and away"},
	{"down and in", "down and in"},
	{"down and away", "down and away"},
	{"high", "high"},
	{"low", "low"},
	{"inside", "inside"},
	{"outside", "outside"},
	{"middle", "middle"},
}

// locationFromLine labels where a strikeout pitch was located, defaulting
// to "unknown".
func locationFromLine(line string) string {
	lower := strings.ToLower(line)
	for _, k := range locationKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.label
		}
	}
	return "unknown"
}

// recordStrikeout adds one strikeout line's detail to a breakdown.
func recordStrikeout(b *model.StrikeoutBreakdown, line string) {
	b.ByPitch[pitchTypeFromLine(line)]++
	b.ByLocation[locationFromLine(line)]++
	lower := strings.ToLower(line)
	if strings.Contains(lower, "looking") {
		b.Looking++
	} else {
		b.Swinging++
	}
	if strings.Contains(lower, "chasing") {
		b.Chase++
	}
}

// ---- Half-inning segmentation ----

var battingMarkerRe = regexp.MustCompile(`([A-Z][^.\n]{0,50}?) batting\.`)

type halfInning struct {
	team string
	text string
}

// splitHalfInnings cuts the transcript into batting segments at each
// "<Team> batting." marker.
func splitHalfInnings(text string) []halfInning {
	matches := battingMarkerRe.FindAllStringSubmatchIndex(text, -1)
	segs := make([]halfInning, 0, len(matches))
	for i, m := range matches {
		team := strings.TrimSpace(text[m[2]:m[3]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segs = append(segs, halfInning{team: team, text: text[m[1]:end]})
	}
	return segs
}

// splitSentences cuts a segment into pseudo-sentences.
func splitSentences(seg string) []string {
	seg = strings.ReplaceAll(seg, "\n", ". ")
	parts := strings.Split(seg, ". ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "."))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ---- Perfect contact ----

var perfectContactRe = regexp.MustCompile(`(?i)perfect contact hits?`)

// countPerfectContact scans the "Perfect Contact Hits" section and
// attributes each named batter to a side by roster membership.
func countPerfectContact(text string, youRoster, oppRoster map[string]bool) (you, opp int) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, line := range lines {
		if perfectContactRe.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return 0, 0
	}
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		// Lines read like "Smith - 2" or just a name.
		name := trimmed
		if idx := strings.IndexAny(trimmed, "-(:"); idx > 0 {
			name = strings.TrimSpace(trimmed[:idx])
		}
		switch {
		case rosterHas(youRoster, name):
			you++
		case rosterHas(oppRoster, name):
			opp++
		}
	}
	return you, opp
}

// rosterHas checks membership by normalized full name, falling back to
// last name because the narrative often uses name fragments.
func rosterHas(roster map[string]bool, name string) bool {
	if roster[Normalize(name)] {
		return true
	}
	return roster[LastNameLower(name)]
}

// ---- Box score ----

// parseIPOuts converts a display innings-pitched string like "5.2" into
// outs (17). Unparseable values yield 0.
func parseIPOuts(ip string) int {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0
	}
	whole, frac := ip, "0"
	if idx := strings.IndexByte(ip, '.'); idx >= 0 {
		whole, frac = ip[:idx], ip[idx+1:]
	}
	w, err := strconv.Atoi(whole)
	if err != nil {
		return 0
	}
	f, err := strconv.Atoi(frac)
	if err != nil || f > 2 {
		f = 0
	}
	return w*3 + f
}

// parseInningRuns converts per-inning run tokens into ints, reading the
// literal "X" (no bottom-half at-bat) as zero.
func parseInningRuns(tokens []string) []int {
	out := make([]int, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if strings.EqualFold(t, "X") {
			out = append(out, 0)
			continue
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// convertBox normalizes one raw team box into a BoxSide, cleaning player
// names of roster prefixes and decision tags.
func convertBox(tb show.TeamBox) model.BoxSide {
	side := model.BoxSide{
		Name:         StripCodes(tb.Name),
		Runs:         tb.Runs,
		Hits:         tb.Hits,
		Errors:       tb.Errors,
		RunsByInning: parseInningRuns(tb.Innings),
	}
	for _, b := range tb.Batters {
		name, _ := CleanPlayerName(b.Name)
		side.Batters = append(side.Batters, model.BatterLine{
			Name: name, AB: b.AB, R: b.R, H: b.H, RBI: b.RBI,
			BB: b.BB, SO: b.SO, HR: b.HR,
		})
	}
	for _, p := range tb.Pitchers {
		name, decision := CleanPlayerName(p.Name)
		side.Pitchers = append(side.Pitchers, model.PitcherLine{
			Name: name, Outs: parseIPOuts(p.IP), H: p.H, R: p.R,
			ER: p.ER, BB: p.BB, SO: p.SO, HR: p.HR, Decision: decision,
		})
	}
	return side
}

// assignBoxes splits the team-id-keyed box map into the user's side and
// the opponent's side by normalized team-name comparison.
func assignBoxes(boxes map[string]show.TeamBox, youTeam string) (you, opp model.BoxSide) {
	youNorm := Normalize(youTeam)
	// Deterministic iteration: sort the (at most two) team-id keys.
	keys := make([]string, 0, len(boxes))
	for k := range boxes {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	assignedYou := false
	for _, k := range keys {
		side := convertBox(boxes[k])
		if !assignedYou && youNorm != "" && Normalize(side.Name) == youNorm {
			you = side
			assignedYou = true
			continue
		}
		if opp.Name == "" && (assignedYou || Normalize(side.Name) != youNorm) {
			opp = side
		}
	}
	if !assignedYou && len(keys) > 0 {
		// Fall back to positional assignment when no name matches.
		you = convertBox(boxes[keys[0]])
		if len(keys) > 1 {
			opp = convertBox(boxes[keys[1]])
		}
	}
	return you, opp
}

// rosterSet builds the membership set used for perfect-contact
// attribution: normalized full names plus lowercased last names.
func rosterSet(side model.BoxSide) map[string]bool {
	set := make(map[string]bool)
	for _, b := range side.Batters {
		set[Normalize(b.Name)] = true
		set[LastNameLower(b.Name)] = true
	}
	return set
}

// ---- Top-level parse ----

// Parse decomposes one game's log payload into a ParsedGameLog plus the
// two box-score sides. It is best-effort over free text: extraction
// failures degrade to empty/zero/"unknown" values, never errors.
func Parse(p *show.GameLogPayload, gameID, youTeam, oppTeam string) (*model.ParsedGameLog, model.BoxSide, model.BoxSide) {
	out := &model.ParsedGameLog{
		ID:      gameID,
		YouTeam: youTeam,
		OppTeam: oppTeam,
		Batting: model.BattingSummary{Strikeouts: model.NewStrikeoutBreakdown()},
		Pitching: model.PitchingSummary{
			Strikeouts: model.NewStrikeoutBreakdown(),
		},
		HRAllowedByYourPitcherLN: make(map[string]int),
		HRAllowedByOppPitcherLN:  make(map[string]int),
	}

	var youBox, oppBox model.BoxSide
	if p != nil {
		youBox, oppBox = assignBoxes(p.BoxScore, youTeam)
	}
	out.RunsByInningYou = youBox.RunsByInning
	out.RunsByInningOpp = oppBox.RunsByInning

	var text string
	if p != nil {
		text = StripCodes(p.LogText)
	}
	out.Ballpark = extractBallpark(text)
	out.HittingDifficulty, out.PitchingDifficulty = extractDifficulties(text)
	out.GoAheadEvents = countGoAheadEvents(text)
	out.PerfectContactHitsYou, out.PerfectContactHitsOpp =
		countPerfectContact(text, rosterSet(youBox), rosterSet(oppBox))

	youNorm := Normalize(youTeam)
	youInning, oppInning := 0, 0

	for _, seg := range splitHalfInnings(text) {
		isYou := Normalize(seg.team) == youNorm
		if isYou {
			youInning++
		} else {
			oppInning++
		}
		inning := oppInning
		if isYou {
			inning = youInning
		}
		parseHalfInning(out, seg.text, inning, isYou)
	}

	return out, youBox, oppBox
}

// parseHalfInning walks one batting segment line by line, tracking the
// current pitcher and the outs count (capped at 2 within the half).
func parseHalfInning(out *model.ParsedGameLog, segText string, inning int, youBatting bool) {
	pitcher := ""
	outs := 0

	for _, line := range splitSentences(segText) {
		if name, ok := strings.CutSuffix(line, " pitching"); ok {
			pitcher = strings.TrimSpace(name)
			continue
		}

		batter := batterFromLine(line)
		isStrikeout := strings.Contains(strings.ToLower(line), "struck out")

		if batter == "" || pitcher == "" {
			// Not attributable: keep strikeout detail, skip outs tracking.
			if isStrikeout {
				recordStrikeoutForSide(out, line, youBatting)
			}
			continue
		}

		result := classifyResult(line)
		if result == "" {
			continue
		}

		pa := model.PlateAppearance{
			Inning:     inning,
			OutsBefore: outs,
			Batter:     batter,
			Pitcher:    pitcher,
			Result:     result,
		}
		if youBatting {
			out.PAsYou = append(out.PAsYou, pa)
		} else {
			out.PAsOpp = append(out.PAsOpp, pa)
		}

		switch result {
		case model.ResultStrikeout:
			recordStrikeoutForSide(out, line, youBatting)
			outs = capOuts(outs + 1)
		case model.ResultOut, model.ResultSacFly, model.ResultSacBunt:
			outs = capOuts(outs + 1)
		case model.ResultDoublePlay:
			if youBatting {
				out.Batting.DoublePlays++
			} else {
				out.Pitching.DoublePlays++
			}
			outs = 2
		case model.ResultHomeRun:
			ln := LastNameLower(pitcher)
			if youBatting {
				out.Batting.HomeRuns++
				if ln != "" {
					out.HRAllowedByOppPitcherLN[ln]++
				}
			} else {
				out.Pitching.HomeRunsAllowed++
				if ln != "" {
					out.HRAllowedByYourPitcherLN[ln]++
				}
			}
		}
	}
}

func recordStrikeoutForSide(out *model.ParsedGameLog, line string, youBatting bool) {
	if youBatting {
		recordStrikeout(&out.Batting.Strikeouts, line)
	} else {
		recordStrikeout(&out.Pitching.Strikeouts, line)
	}
}

func capOuts(n int) int {
	if n > 2 {
		return 2
	}
	return n
}
