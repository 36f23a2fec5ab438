// Package items maintains a TTL'd snapshot of the player items catalog
// and builds the last-name attribute index the split annotator consumes.
package items

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/gamelog"
	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// DefaultTTL keeps the catalog for 12 hours; it changes rarely.
const DefaultTTL = 12 * time.Hour

// Source fetches catalog pages from the remote API.
type Source interface {
	FetchItemsPage(ctx context.Context, page int) (*show.ItemsPage, error)
}

// Store persists a fetched catalog between runs. A nil Store disables
// persistence and the cache works purely in memory.
type Store interface {
	LoadItems() ([]show.Item, time.Time, error)
	SaveItems(items []show.Item, fetchedAt time.Time) error
}

// Cache serves the attribute index, refreshing from the source when the
// snapshot is older than the TTL or a refresh is forced.
type Cache struct {
	src   Source
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	fetchedAt time.Time
	index     map[string]model.PlayerAttributes
}

// NewCache builds a cache over src. A non-positive ttl means DefaultTTL.
func NewCache(src Source, store Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{src: src, store: store, ttl: ttl, now: time.Now}
}

// Index returns the last-name attribute index, refreshing the snapshot
// when it is stale or force is set. Concurrent callers serialize on the
// refresh.
func (c *Cache) Index(ctx context.Context, force bool) (map[string]model.PlayerAttributes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index == nil && c.store != nil && !force {
		if items, at, err := c.store.LoadItems(); err == nil && len(items) > 0 {
			c.index = BuildIndex(items)
			c.fetchedAt = at
		}
	}
	fresh := c.index != nil && c.now().Sub(c.fetchedAt) < c.ttl
	if fresh && !force {
		return c.index, nil
	}

	items, err := c.fetchAll(ctx)
	if err != nil {
		// A stale index beats no index.
		if c.index != nil {
			return c.index, nil
		}
		return nil, err
	}
	c.index = BuildIndex(items)
	c.fetchedAt = c.now()
	if c.store != nil {
		if err := c.store.SaveItems(items, c.fetchedAt); err != nil {
			return nil, fmt.Errorf("persist items snapshot: %w", err)
		}
	}
	return c.index, nil
}

func (c *Cache) fetchAll(ctx context.Context) ([]show.Item, error) {
	first, err := c.src.FetchItemsPage(ctx, 1)
	if err != nil {
		return nil, err
	}
	items := first.Items
	for page := 2; page <= first.TotalPages; page++ {
		p, err := c.src.FetchItemsPage(ctx, page)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Items...)
	}
	return items, nil
}

// BuildIndex keys item attributes by lowercased last name, matching how
// the narrative log refers to players. Later items win on collision.
func BuildIndex(items []show.Item) map[string]model.PlayerAttributes {
	idx := make(map[string]model.PlayerAttributes, len(items))
	for _, it := range items {
		key := gamelog.LastNameLower(it.Name)
		if key == "" {
			continue
		}
		idx[key] = model.PlayerAttributes{
			Name:         it.Name,
			BatHand:      strings.ToUpper(strings.TrimSpace(it.BatHand)),
			ThrowHand:    strings.ToUpper(strings.TrimSpace(it.ThrowHand)),
			HeightInches: ParseHeight(it.Height),
			MaxVelocity:  maxVelocity(it),
			IsOutlier:    hasOutlierQuirk(it),
		}
	}
	return idx
}

var heightRe = regexp.MustCompile(`(\d+)'\s*(\d+)`)

// ParseHeight converts a feet-and-inches string like 6'2" to inches.
// Unparseable input yields 0.
func ParseHeight(s string) int {
	m := heightRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	feet, _ := strconv.Atoi(m[1])
	inches, _ := strconv.Atoi(m[2])
	return feet*12 + inches
}

func maxVelocity(it show.Item) float64 {
	var max float64
	for _, p := range it.Pitches {
		if p.Speed > max {
			max = p.Speed
		}
	}
	return max
}

func hasOutlierQuirk(it show.Item) bool {
	for _, q := range it.Quirks {
		if strings.EqualFold(strings.TrimSpace(q.Name), "outlier") {
			return true
		}
	}
	return false
}
