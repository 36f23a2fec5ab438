package items

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/show"
)

// fakeSource serves canned pages and counts fetches.
type fakeSource struct {
	pages   []*show.ItemsPage
	fetches int
	err     error
}

func (f *fakeSource) FetchItemsPage(_ context.Context, page int) (*show.ItemsPage, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page-1], nil
}

func item(name, batHand, throwHand, height string) show.Item {
	return show.Item{Name: name, BatHand: batHand, ThrowHand: throwHand, Height: height}
}

func twoPageSource() *fakeSource {
	p1 := &show.ItemsPage{Page: 1, TotalPages: 2, Items: []show.Item{
		item("Mike Trout", "R", "R", `6'2"`),
	}}
	p2 := &show.ItemsPage{Page: 2, TotalPages: 2, Items: []show.Item{
		item("Shohei Ohtani", "S", "R", `6'4"`),
	}}
	return &fakeSource{pages: []*show.ItemsPage{p1, p2}}
}

func TestCacheFetchesAllPagesOnce(t *testing.T) {
	src := twoPageSource()
	c := NewCache(src, nil, time.Hour)

	idx, err := c.Index(context.Background(), false)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(idx) != 2 {
		t.Fatalf("index size = %d, want 2", len(idx))
	}
	if src.fetches != 2 {
		t.Errorf("fetches = %d, want 2", src.fetches)
	}

	// Fresh snapshot, no refetch.
	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatalf("Index again: %v", err)
	}
	if src.fetches != 2 {
		t.Errorf("fetches after cached call = %d, want 2", src.fetches)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	src := twoPageSource()
	c := NewCache(src, nil, time.Hour)

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if src.fetches != 2 {
		t.Fatalf("fetches = %d, want 2", src.fetches)
	}

	now = now.Add(59 * time.Minute)
	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if src.fetches != 2 {
		t.Errorf("fetches before expiry = %d, want 2", src.fetches)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if src.fetches != 4 {
		t.Errorf("fetches after expiry = %d, want 4", src.fetches)
	}
}

func TestCacheForceRefetch(t *testing.T) {
	src := twoPageSource()
	c := NewCache(src, nil, time.Hour)

	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Index(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if src.fetches != 4 {
		t.Errorf("fetches = %d, want 4 after forced refresh", src.fetches)
	}
}

func TestCacheServesStaleOnFetchFailure(t *testing.T) {
	src := twoPageSource()
	c := NewCache(src, nil, time.Hour)

	if _, err := c.Index(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("api down")
	idx, err := c.Index(context.Background(), true)
	if err != nil {
		t.Fatalf("expected stale index on fetch failure, got error: %v", err)
	}
	if len(idx) != 2 {
		t.Errorf("stale index size = %d, want 2", len(idx))
	}
}

func TestBuildIndexAttributes(t *testing.T) {
	items := []show.Item{
		{
			Name: "Chris Sale", BatHand: "l", ThrowHand: "l", Height: `6'6"`,
			Pitches: []struct {
				Name  string  `json:"name"`
				Speed float64 `json:"speed"`
			}{{Name: "Slider", Speed: 87.5}, {Name: "Fastball", Speed: 98.2}},
			Quirks: []struct {
				Name string `json:"name"`
			}{{Name: "Outlier"}},
		},
	}
	idx := BuildIndex(items)

	sale, ok := idx["sale"]
	if !ok {
		t.Fatalf("index keys = %v, want sale", idx)
	}
	if sale.ThrowHand != "L" || sale.BatHand != "L" {
		t.Errorf("hands = %s/%s, want L/L", sale.BatHand, sale.ThrowHand)
	}
	if sale.HeightInches != 78 {
		t.Errorf("height = %d, want 78", sale.HeightInches)
	}
	if sale.MaxVelocity != 98.2 {
		t.Errorf("max velocity = %g, want 98.2", sale.MaxVelocity)
	}
	if !sale.IsOutlier {
		t.Error("expected outlier quirk to be detected")
	}
}

func TestParseHeight(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{`6'2"`, 74},
		{`5'11"`, 71},
		{`6' 4"`, 76},
		{"", 0},
		{"tall", 0},
	}
	for _, c := range cases {
		if got := ParseHeight(c.in); got != c.want {
			t.Errorf("ParseHeight(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
