package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/goldenbearlabs/showinsights/internal/config"
	"github.com/goldenbearlabs/showinsights/internal/gamelog"
	"github.com/goldenbearlabs/showinsights/internal/insights"
	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
	"github.com/goldenbearlabs/showinsights/internal/storage"
)

// loadConfig reads .env (when present) and the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.New()
}

// openStore creates the database directory if needed and opens the store.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// newAPIClient builds the companion-app client from config.
func newAPIClient(cfg *config.Config) *show.Client {
	client := show.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	client.SetHistoryConcurrency(cfg.Fetch.HistoryConcurrency)
	return client
}

// historyRows returns the stored history for the current scope, fetching
// from the API first when the store is empty or refresh is set.
func historyRows(ctx context.Context, db *storage.DB, client *show.Client, refresh bool) ([]model.GameRow, error) {
	if !refresh {
		rows, err := db.ListHistory(username, platform, mode)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	raws, err := client.FetchHistory(ctx, username, platform, mode)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	resp := insights.BuildHistory(raws, username)
	if err := db.ReplaceHistory(username, platform, mode, resp.Games); err != nil {
		return nil, fmt.Errorf("store history: %w", err)
	}
	return resp.Games, nil
}

// teamNames orients a row's team names from the user's point of view.
// Both come back empty when the user's side is unknown.
func teamNames(row model.GameRow) (you, opp string) {
	switch row.YouAre {
	case model.SideHome:
		return row.Home.Name, row.Away.Name
	case model.SideAway:
		return row.Away.Name, row.Home.Name
	}
	return "", ""
}

// gameLoader returns a loader that serves parsed logs from the store and
// falls back to the API on a miss. refresh bypasses the cache.
func gameLoader(db *storage.DB, client *show.Client, refresh bool) insights.GameLoader {
	return func(ctx context.Context, row model.GameRow) (*insights.LoadedGame, error) {
		if !refresh {
			cg, ok, err := db.GetGameLog(username, row.ID)
			if err != nil {
				return nil, err
			}
			if ok {
				return &insights.LoadedGame{Row: row, Log: cg.Log, YouBox: cg.YouBox, OppBox: cg.OppBox}, nil
			}
		}
		payload, err := client.FetchGameLog(ctx, username, row.ID)
		if err != nil {
			return nil, err
		}
		you, opp := teamNames(row)
		log, youBox, oppBox := gamelog.Parse(payload, row.ID, you, opp)
		cg := &storage.CachedGame{Log: log, YouBox: youBox, OppBox: oppBox}
		if err := db.PutGameLog(username, row.ID, cg); err != nil {
			return nil, fmt.Errorf("cache game %s: %w", row.ID, err)
		}
		return &insights.LoadedGame{Row: row, Log: log, YouBox: youBox, OppBox: oppBox}, nil
	}
}
