package model

import "time"

// Side identifies which side of a game the tracked user controlled.
type Side int

const (
	SideNone Side = 0
	SideHome Side = 1
	SideAway Side = 2
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "?"
	}
}

// SideLine is one team's final box-score line in a history row.
type SideLine struct {
	Name   string `json:"name"`
	Runs   int    `json:"runs"`
	Hits   int    `json:"hits"`
	Errors int    `json:"errors"`
	Result string `json:"result"` // "W", "L" or free text from the API
}

// GameRow is one completed game from the user's history, normalized.
// Rows are built once per history fetch and immutable afterwards.
type GameRow struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"-"`       // zero when the display date was unparseable
	DateISO string    `json:"dateISO"` // "" when unparseable
	Mode    string    `json:"mode"`

	Home SideLine `json:"home"`
	Away SideLine `json:"away"`

	YouAre   Side `json:"youAre"`
	IsCPU    bool `json:"isCPU"`
	IsOnline bool `json:"isOnline"`

	// YouRuns/OppRuns are only meaningful when YouAre != SideNone.
	YouRuns int `json:"youRuns"`
	OppRuns int `json:"oppRuns"`
}

// HistorySummary holds the counts shown alongside the full game list.
type HistorySummary struct {
	Games       int `json:"games"`
	Online      int `json:"online"`
	VsCPU       int `json:"vsCPU"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	RunsFor     int `json:"runsFor"`
	RunsAgainst int `json:"runsAgainst"`
}

// InsightsResponse is the full game history plus summary counts.
type InsightsResponse struct {
	Username string         `json:"username"`
	Games    []GameRow      `json:"games"`
	Summary  HistorySummary `json:"summary"`
}

// ---- Parsed game log ----

// Plate-appearance result codes produced by the game-log parser.
const (
	ResultHomeRun    = "HR"
	ResultTriple     = "3B"
	ResultDouble     = "2B"
	ResultDoublePlay = "DP"
	ResultWalk       = "BB"
	ResultHitByPitch = "HBP"
	ResultSacFly     = "SF"
	ResultSacBunt    = "SAC"
	ResultSingle     = "1B"
	ResultStrikeout  = "SO"
	ResultOut        = "OUT"
)

// PlateAppearance is one raw plate-appearance event from the narrative log.
type PlateAppearance struct {
	Inning     int    `json:"inning"`
	OutsBefore int    `json:"outsBefore"`
	Batter     string `json:"batter"`
	Pitcher    string `json:"pitcher"`
	Result     string `json:"result"`
}

// StrikeoutBreakdown is the taxonomy of strikeouts for one side of a game.
type StrikeoutBreakdown struct {
	ByPitch    map[string]int `json:"byPitch"`
	ByLocation map[string]int `json:"byLocation"`
	Swinging   int            `json:"swinging"`
	Looking    int            `json:"looking"`
	Chase      int            `json:"chase"`
}

// NewStrikeoutBreakdown returns a breakdown with initialized maps.
func NewStrikeoutBreakdown() StrikeoutBreakdown {
	return StrikeoutBreakdown{
		ByPitch:    make(map[string]int),
		ByLocation: make(map[string]int),
	}
}

// Add folds another breakdown into this one.
func (b *StrikeoutBreakdown) Add(o StrikeoutBreakdown) {
	if b.ByPitch == nil {
		b.ByPitch = make(map[string]int)
	}
	if b.ByLocation == nil {
		b.ByLocation = make(map[string]int)
	}
	for k, v := range o.ByPitch {
		b.ByPitch[k] += v
	}
	for k, v := range o.ByLocation {
		b.ByLocation[k] += v
	}
	b.Swinging += o.Swinging
	b.Looking += o.Looking
	b.Chase += o.Chase
}

// Total returns the number of strikeouts in the breakdown.
func (b *StrikeoutBreakdown) Total() int {
	return b.Swinging + b.Looking
}

// BattingSummary covers the tracked user's batting in one game.
type BattingSummary struct {
	HomeRuns    int                `json:"homeRuns"`
	DoublePlays int                `json:"doublePlays"`
	Strikeouts  StrikeoutBreakdown `json:"strikeouts"`
}

// PitchingSummary covers the tracked user's pitching in one game.
type PitchingSummary struct {
	HomeRunsAllowed int                `json:"homeRunsAllowed"`
	DoublePlays     int                `json:"doublePlays"`
	Strikeouts      StrikeoutBreakdown `json:"strikeouts"`
}

// ParsedGameLog is the structured decomposition of one game's text log.
type ParsedGameLog struct {
	ID       string `json:"id"`
	YouTeam  string `json:"youTeam"`
	OppTeam  string `json:"oppTeam"`
	Ballpark string `json:"ballpark"` // best-effort, "" when not found

	HittingDifficulty  string `json:"hittingDifficulty"`
	PitchingDifficulty string `json:"pitchingDifficulty"`

	RunsByInningYou []int `json:"runsByInningYou"`
	RunsByInningOpp []int `json:"runsByInningOpp"`

	GoAheadEvents         int `json:"goAheadEvents"`
	PerfectContactHitsYou int `json:"perfectContactHitsYou"`
	PerfectContactHitsOpp int `json:"perfectContactHitsOpp"`

	Batting  BattingSummary  `json:"batting"`
	Pitching PitchingSummary `json:"pitching"`

	PAsYou []PlateAppearance `json:"pasYou"`
	PAsOpp []PlateAppearance `json:"pasOpp"`

	// Narrative home-run attributions keyed by pitcher last name,
	// lowercased. The narrative only gives a name fragment, so these are
	// reconciled against box-score pitcher rows sharing that last name.
	HRAllowedByYourPitcherLN map[string]int `json:"hrAllowedByYourPitcherLN"`
	HRAllowedByOppPitcherLN  map[string]int `json:"hrAllowedByOppPitcherLN"`
}

// ---- Box score ----

// BatterLine is one batter's row in a box score.
type BatterLine struct {
	Name string `json:"name"`
	AB   int    `json:"ab"`
	R    int    `json:"r"`
	H    int    `json:"h"`
	RBI  int    `json:"rbi"`
	BB   int    `json:"bb"`
	SO   int    `json:"so"`
	HR   int    `json:"hr"`
}

// PitcherLine is one pitcher's row in a box score. Innings pitched are
// kept as outs so folds stay additive.
type PitcherLine struct {
	Name     string `json:"name"`
	Outs     int    `json:"outs"`
	H        int    `json:"h"`
	R        int    `json:"r"`
	ER       int    `json:"er"`
	BB       int    `json:"bb"`
	SO       int    `json:"so"`
	HR       int    `json:"hr"`
	Decision string `json:"decision"` // "W", "L", "S" or ""
}

// BoxSide is one team's structured box score for a game.
type BoxSide struct {
	Name         string        `json:"name"`
	Runs         int           `json:"runs"`
	Hits         int           `json:"hits"`
	Errors       int           `json:"errors"`
	RunsByInning []int         `json:"runsByInning"`
	Batters      []BatterLine  `json:"batters"`
	Pitchers     []PitcherLine `json:"pitchers"`
}

// ---- Stat lines: additive counting records + derived rate stats ----

// BattingCounting holds only additive batting fields so the aggregation
// fold stays commutative. Rates are computed separately by DeriveBatting.
type BattingCounting struct {
	PA      int `json:"pa"`
	AB      int `json:"ab"`
	H       int `json:"h"`
	Singles int `json:"_1b"`
	Doubles int `json:"_2b"`
	Triples int `json:"_3b"`
	HR      int `json:"hr"`
	BB      int `json:"bb"`
	HBP     int `json:"hbp"`
	SF      int `json:"sf"`
	SAC     int `json:"sac"`
	SO      int `json:"so"`
	GIDP    int `json:"gidp"`
	R       int `json:"r"`
	RBI     int `json:"rbi"`
}

// Add folds another counting record into this one.
func (c *BattingCounting) Add(o BattingCounting) {
	c.PA += o.PA
	c.AB += o.AB
	c.H += o.H
	c.Singles += o.Singles
	c.Doubles += o.Doubles
	c.Triples += o.Triples
	c.HR += o.HR
	c.BB += o.BB
	c.HBP += o.HBP
	c.SF += o.SF
	c.SAC += o.SAC
	c.SO += o.SO
	c.GIDP += o.GIDP
	c.R += o.R
	c.RBI += o.RBI
}

// TotalBases returns 1B + 2*2B + 3*3B + 4*HR.
func (c *BattingCounting) TotalBases() int {
	return c.Singles + 2*c.Doubles + 3*c.Triples + 4*c.HR
}

// AddResult records one plate appearance by its result code.
func (c *BattingCounting) AddResult(result string) {
	c.PA++
	switch result {
	case ResultSingle:
		c.AB++
		c.H++
		c.Singles++
	case ResultDouble:
		c.AB++
		c.H++
		c.Doubles++
	case ResultTriple:
		c.AB++
		c.H++
		c.Triples++
	case ResultHomeRun:
		c.AB++
		c.H++
		c.HR++
	case ResultWalk:
		c.BB++
	case ResultHitByPitch:
		c.HBP++
	case ResultSacFly:
		c.SF++
	case ResultSacBunt:
		c.SAC++
	case ResultStrikeout:
		c.AB++
		c.SO++
	case ResultDoublePlay:
		c.AB++
		c.GIDP++
	case ResultOut:
		c.AB++
	}
}

// BattingDerived holds rate stats computed once from a finished counting record.
type BattingDerived struct {
	AVG   float64 `json:"avg"`
	OBP   float64 `json:"obp"`
	SLG   float64 `json:"slg"`
	OPS   float64 `json:"ops"`
	ISO   float64 `json:"iso"`
	BABIP float64 `json:"babip"`
}

// DeriveBatting computes rate stats from a finished counting record.
func DeriveBatting(c BattingCounting) BattingDerived {
	var d BattingDerived
	if c.AB > 0 {
		d.AVG = float64(c.H) / float64(c.AB)
		d.SLG = float64(c.TotalBases()) / float64(c.AB)
	}
	if denom := c.AB + c.BB + c.HBP + c.SF; denom > 0 {
		d.OBP = float64(c.H+c.BB+c.HBP) / float64(denom)
	}
	d.OPS = d.OBP + d.SLG
	d.ISO = d.SLG - d.AVG
	if denom := c.AB - c.SO - c.HR + c.SF; denom > 0 {
		d.BABIP = float64(c.H-c.HR) / float64(denom)
	}
	return d
}

// BattingLine is a finalized batting line: counts plus derived rates.
type BattingLine struct {
	BattingCounting
	BattingDerived
}

// FinalizeBatting closes a counting record into a full line.
func FinalizeBatting(c BattingCounting) BattingLine {
	return BattingLine{BattingCounting: c, BattingDerived: DeriveBatting(c)}
}

// PitchingCounting holds only additive pitching fields.
type PitchingCounting struct {
	Outs int `json:"outs"`
	H    int `json:"h"`
	R    int `json:"r"`
	ER   int `json:"er"`
	BB   int `json:"bb"`
	SO   int `json:"so"`
	HR   int `json:"hr"`
}

// Add folds another counting record into this one.
func (c *PitchingCounting) Add(o PitchingCounting) {
	c.Outs += o.Outs
	c.H += o.H
	c.R += o.R
	c.ER += o.ER
	c.BB += o.BB
	c.SO += o.SO
	c.HR += o.HR
}

// IP returns innings pitched as a decimal (3 outs = 1 inning).
func (c *PitchingCounting) IP() float64 {
	return float64(c.Outs) / 3.0
}

// PitchingDerived holds pitching rate stats computed in the finalization pass.
type PitchingDerived struct {
	IP     float64 `json:"ip"`
	ERA    float64 `json:"era"`
	WHIP   float64 `json:"whip"`
	K9     float64 `json:"k9"`
	BB9    float64 `json:"bb9"`
	HR9    float64 `json:"hr9"`
	FIPRaw float64 `json:"fipRaw"` // (13*HR + 3*BB - 2*K) / IP, without the league constant
	// OPSAllowed estimates opponent OPS; total bases against are
	// approximated as H + 3*HR because the box score carries no
	// extra-base detail for pitchers.
	OPSAllowed float64 `json:"opsAllowed"`
}

// DerivePitching computes rate stats from a finished counting record.
func DerivePitching(c PitchingCounting) PitchingDerived {
	var d PitchingDerived
	d.IP = c.IP()
	if d.IP > 0 {
		d.ERA = float64(c.ER) * 9 / d.IP
		d.WHIP = float64(c.BB+c.H) / d.IP
		d.K9 = float64(c.SO) * 9 / d.IP
		d.BB9 = float64(c.BB) * 9 / d.IP
		d.HR9 = float64(c.HR) * 9 / d.IP
		d.FIPRaw = (13*float64(c.HR) + 3*float64(c.BB) - 2*float64(c.SO)) / d.IP
	}
	// Batters faced estimated as outs + hits + walks.
	if bf := c.Outs + c.H + c.BB; bf > 0 {
		obp := float64(c.H+c.BB) / float64(bf)
		var slg float64
		if ab := bf - c.BB; ab > 0 {
			slg = float64(c.H+3*c.HR) / float64(ab)
		}
		d.OPSAllowed = obp + slg
	}
	return d
}

// PitchingLine is a finalized pitching line.
type PitchingLine struct {
	PitchingCounting
	PitchingDerived
}

// FinalizePitching closes a counting record into a full line.
func FinalizePitching(c PitchingCounting) PitchingLine {
	return PitchingLine{PitchingCounting: c, PitchingDerived: DerivePitching(c)}
}

// TeamStats is one team's batting and pitching line across aggregated games.
type TeamStats struct {
	Batting  BattingLine  `json:"batting"`
	Pitching PitchingLine `json:"pitching"`
}

// ---- Aggregate response ----

// BallparkLine is the finalized per-ballpark performance row. The
// intermediate batting accumulator is dropped during finalization.
type BallparkLine struct {
	Park     string  `json:"park"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Runs     int     `json:"runs"`
	HomeRuns int     `json:"homeRuns"`
	OPS      float64 `json:"ops"`
}

// Insights holds situational counters across the aggregated games.
type Insights struct {
	ComebackWins          int                `json:"comebackWins"`
	GoAheadEvents         int                `json:"goAheadEvents"`
	PerfectContactHitsYou int                `json:"perfectContactHitsYou"`
	PerfectContactHitsOpp int                `json:"perfectContactHitsOpp"`
	StrikeoutsBatting     StrikeoutBreakdown `json:"strikeoutsBatting"`
	StrikeoutsPitching    StrikeoutBreakdown `json:"strikeoutsPitching"`
	Ballparks             []BallparkLine     `json:"ballparks"`
}

// HitterAgg is one hitter's aggregated line, keyed by cleaned name.
type HitterAgg struct {
	Name string `json:"name"`
	BattingCounting
	BattingDerived
}

// PitcherAgg is one pitcher's aggregated line, keyed by cleaned name.
type PitcherAgg struct {
	Name string `json:"name"`
	PitchingCounting
	// NarrativeHR counts home runs attributed through narrative last-name
	// matching. HRAllowedTotal sums it with the box-score count without
	// deduplication, so the same homer can be counted twice when both
	// sources mention it.
	NarrativeHR    int `json:"narrativeHR"`
	HRAllowedTotal int `json:"hrAllowedTotal"`
	PitchingDerived
}

// VsPitcherAgg is the user's batting performance against one opposing pitcher.
type VsPitcherAgg struct {
	Name string `json:"name"`
	BattingCounting
	BattingDerived
}

// SplitPA is a plate appearance annotated for client-side re-filtering.
type SplitPA struct {
	PlateAppearance
	PitcherHand    string  `json:"pitcherHand"` // "R", "L" or ""
	PitcherOutlier bool    `json:"pitcherOutlier"`
	PitcherMaxVelo float64 `json:"pitcherMaxVelo"`
	// BatterSide is the resolved side: a switch hitter bats opposite the
	// specific opposing pitcher's throwing hand for that plate appearance.
	BatterSide        string `json:"batterSide"`
	BatterHeightIn    int    `json:"batterHeightIn"`
	HittingDifficulty string `json:"hittingDifficulty"`
}

// GameSplits is the split-bundle entry for one aggregated game.
type GameSplits struct {
	GameID            string    `json:"gameID"`
	HittingDifficulty string    `json:"hittingDifficulty"`
	PAs               []SplitPA `json:"pas"`
}

// AggregateResponse is the output of folding many parsed games. It is
// recomputed fully on every aggregation request, never updated in place.
type AggregateResponse struct {
	GamesAggregated int `json:"gamesAggregated"`

	YourStats TeamStats `json:"yourStats"`
	OppStats  TeamStats `json:"oppStats"`

	YourInsights Insights `json:"yourInsights"`

	Hitters   map[string]*HitterAgg    `json:"hitters"`
	Pitchers  map[string]*PitcherAgg   `json:"pitchers"`
	VsPitcher map[string]*VsPitcherAgg `json:"vsPitcher"`

	// SplitBundle is only populated when the caller asks for it.
	SplitBundle []GameSplits `json:"splitBundle,omitempty"`
}

// ---- Player attributes (items catalog) ----

// PlayerAttributes is one entry of the last-name-keyed attribute index
// built from the items catalog.
type PlayerAttributes struct {
	Name         string  `json:"name"`
	BatHand      string  `json:"batHand"`   // "R", "L" or "S"
	ThrowHand    string  `json:"throwHand"` // "R" or "L"
	HeightInches int     `json:"heightInches"`
	MaxVelocity  float64 `json:"maxVelocity"`
	IsOutlier    bool    `json:"isOutlier"`
}
