// Package show provides a minimal client for the Show companion-app API:
// paginated game history, single-game logs, and the player-item catalog.
package show

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/gate"
)

// DefaultBaseURL is the companion-app API root.
const DefaultBaseURL = "https://mlb25.theshow.com/apis"

// historyConcurrency caps in-flight history-page requests.
const historyConcurrency = 14

// historyBackoff holds the retry delays for history pages 2..N. Page 1 is
// never retried: a failure there means total_pages is unknown anyway.
var historyBackoff = []time.Duration{120 * time.Millisecond, 320 * time.Millisecond}

// Client talks to the Show companion-app API.
type Client struct {
	baseURL      string
	http         *http.Client
	historyLimit int

	// sleep is swapped out in tests to skip real backoff delays.
	sleep func(time.Duration)
}

// SetHistoryConcurrency overrides the history-page fan-out limit.
func (c *Client) SetHistoryConcurrency(n int) {
	if n > 0 {
		c.historyLimit = n
	}
}

// NewClient returns a client for the given API root. timeout bounds every
// request so a hung fetch cannot hold a concurrency slot forever.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: timeout},
		historyLimit: historyConcurrency,
		sleep:        time.Sleep,
	}
}

// RawGame is one unprocessed record from game_history.json. Numeric
// fields arrive as free-text strings and are parsed permissively by the
// row normalizer.
type RawGame struct {
	ID          string `json:"id"`
	DisplayDate string `json:"display_date"` // MM/DD/YYYY HH:MM:SS, implicitly UTC
	GameMode    string `json:"game_mode"`

	HomeName     string `json:"home_name"`
	HomeFullName string `json:"home_full_name"`
	HomeRuns     string `json:"home_runs"`
	HomeHits     string `json:"home_hits"`
	HomeErrors   string `json:"home_errors"`
	HomeResult   string `json:"home_result"`

	AwayName     string `json:"away_name"`
	AwayFullName string `json:"away_full_name"`
	AwayRuns     string `json:"away_runs"`
	AwayHits     string `json:"away_hits"`
	AwayErrors   string `json:"away_errors"`
	AwayResult   string `json:"away_result"`
}

// HistoryPage is one page of game_history.json.
type HistoryPage struct {
	Page        int       `json:"page"`
	PerPage     int       `json:"per_page"`
	TotalPages  int       `json:"total_pages"`
	GameHistory []RawGame `json:"game_history"`
}

// FetchHistoryPage retrieves a single history page.
func (c *Client) FetchHistoryPage(ctx context.Context, username, platform, mode string, page int) (*HistoryPage, error) {
	params := url.Values{
		"username": {username},
		"platform": {platform},
		"mode":     {mode},
		"page":     {fmt.Sprintf("%d", page)},
	}
	var hp HistoryPage
	if err := c.get(ctx, "/game_history.json?"+params.Encode(), &hp); err != nil {
		return nil, err
	}
	return &hp, nil
}

// FetchHistory retrieves every history page for the user and returns the
// flattened record list. Page 1 is fetched first to learn total_pages;
// remaining pages are fetched through a bounded-concurrency gate with two
// retries each. Any page failure fails the whole fetch; no partial
// results are returned.
func (c *Client) FetchHistory(ctx context.Context, username, platform, mode string) ([]RawGame, error) {
	first, err := c.FetchHistoryPage(ctx, username, platform, mode, 1)
	if err != nil {
		return nil, fmt.Errorf("history page 1: %w", err)
	}
	if first.TotalPages <= 1 {
		return first.GameHistory, nil
	}

	type pageResult struct {
		page  int
		games []RawGame
		err   error
	}

	g := gate.New(c.historyLimit)
	results := make(chan pageResult, first.TotalPages-1)
	var wg sync.WaitGroup

	for page := 2; page <= first.TotalPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			if err := g.Acquire(ctx); err != nil {
				results <- pageResult{page: page, err: err}
				return
			}
			defer g.Release()
			hp, err := c.fetchHistoryPageRetry(ctx, username, platform, mode, page)
			if err != nil {
				results <- pageResult{page: page, err: err}
				return
			}
			results <- pageResult{page: page, games: hp.GameHistory}
		}(page)
	}
	wg.Wait()
	close(results)

	byPage := map[int][]RawGame{1: first.GameHistory}
	for r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("history page %d: %w", r.page, r.err)
		}
		byPage[r.page] = r.games
	}

	// Concurrent arrival order is meaningless; reassemble in page order.
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	var all []RawGame
	for _, p := range pages {
		all = append(all, byPage[p]...)
	}
	return all, nil
}

// fetchHistoryPageRetry fetches one page with the fixed backoff schedule.
func (c *Client) fetchHistoryPageRetry(ctx context.Context, username, platform, mode string, page int) (*HistoryPage, error) {
	var lastErr error
	for attempt := 0; attempt <= len(historyBackoff); attempt++ {
		if attempt > 0 {
			c.sleep(historyBackoff[attempt-1])
		}
		hp, err := c.FetchHistoryPage(ctx, username, platform, mode, page)
		if err == nil {
			return hp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// ---- Game log ----

// TeamBox is one team's raw box score in a game_log payload.
type TeamBox struct {
	Name     string          `json:"name"`
	Runs     int             `json:"runs"`
	Hits     int             `json:"hits"`
	Errors   int             `json:"errors"`
	Innings  []string        `json:"innings"` // per-inning run tokens; "X" marks a skipped bottom half
	Batters  []RawBatterRow  `json:"batters"`
	Pitchers []RawPitcherRow `json:"pitchers"`
}

// RawBatterRow is one batter's box-score row as served.
type RawBatterRow struct {
	Name string `json:"name"`
	AB   int    `json:"ab"`
	R    int    `json:"r"`
	H    int    `json:"h"`
	RBI  int    `json:"rbi"`
	BB   int    `json:"bb"`
	SO   int    `json:"so"`
	HR   int    `json:"hr"`
}

// RawPitcherRow is one pitcher's box-score row as served. IP is a display
// string like "5.2" (five and two-thirds innings).
type RawPitcherRow struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
	H    int    `json:"h"`
	R    int    `json:"r"`
	ER   int    `json:"er"`
	BB   int    `json:"bb"`
	SO   int    `json:"so"`
	HR   int    `json:"hr"`
}

// GameLogPayload is the decoded game_log.json body. The wire format is an
// array of [key, value] tuples; keys other than the three below are
// ignored.
type GameLogPayload struct {
	LineScore json.RawMessage
	LogText   string
	// BoxScore is keyed by numeric team-id strings, one entry per team.
	BoxScore map[string]TeamBox
}

// UnmarshalJSON decodes the {"game_log": [[key, value], ...]} tuple body.
func (p *GameLogPayload) UnmarshalJSON(data []byte) error {
	var outer struct {
		GameLog []json.RawMessage `json:"game_log"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	for _, tuple := range outer.GameLog {
		var pair []json.RawMessage
		if err := json.Unmarshal(tuple, &pair); err != nil {
			return fmt.Errorf("game_log tuple: %w", err)
		}
		if len(pair) != 2 {
			continue
		}
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			continue
		}
		switch key {
		case "line_score":
			p.LineScore = pair[1]
		case "game_log":
			if err := json.Unmarshal(pair[1], &p.LogText); err != nil {
				return fmt.Errorf("game_log text: %w", err)
			}
		case "box_score":
			if err := json.Unmarshal(pair[1], &p.BoxScore); err != nil {
				return fmt.Errorf("box_score: %w", err)
			}
		}
	}
	return nil
}

// FetchGameLog retrieves and decodes one game's log payload.
func (c *Client) FetchGameLog(ctx context.Context, username, id string) (*GameLogPayload, error) {
	params := url.Values{
		"username": {username},
		"id":       {id},
	}
	var p GameLogPayload
	if err := c.get(ctx, "/game_log.json?"+params.Encode(), &p); err != nil {
		return nil, fmt.Errorf("game log %s: %w", id, err)
	}
	return &p, nil
}

// ---- Items catalog ----

// Item is one player card from the items catalog.
type Item struct {
	Name      string `json:"name"`
	BatHand   string `json:"bat_hand"`   // "R", "L" or "S"
	ThrowHand string `json:"throw_hand"` // "R" or "L"
	Height    string `json:"height"`     // e.g. `6'2"`
	Pitches   []struct {
		Name  string  `json:"name"`
		Speed float64 `json:"speed"`
	} `json:"pitches"`
	Quirks []struct {
		Name string `json:"name"`
	} `json:"quirks"`
}

// ItemsPage is one page of items.json.
type ItemsPage struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Items      []Item `json:"items"`
}

// FetchItemsPage retrieves a single items catalog page.
func (c *Client) FetchItemsPage(ctx context.Context, page int) (*ItemsPage, error) {
	var ip ItemsPage
	if err := c.get(ctx, fmt.Sprintf("/items.json?page=%d", page), &ip); err != nil {
		return nil, fmt.Errorf("items page %d: %w", page, err)
	}
	return &ip, nil
}

// get performs a GET request and JSON-decodes the response body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
