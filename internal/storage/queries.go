package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goldenbearlabs/showinsights/internal/model"
	"github.com/goldenbearlabs/showinsights/internal/show"
)

// CachedGame is the persisted form of one parsed game log.
type CachedGame struct {
	Log    *model.ParsedGameLog `json:"log"`
	YouBox model.BoxSide        `json:"youBox"`
	OppBox model.BoxSide        `json:"oppBox"`
}

// ReplaceHistory swaps the stored history for one (username, platform,
// mode) scope with the given rows, in a single transaction.
func (db *DB) ReplaceHistory(username, platform, mode string, rows []model.GameRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM history WHERE username = ? AND platform = ? AND mode = ?",
		username, platform, mode,
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO history(
			username, platform, mode, id, date_iso, game_mode,
			home_name, home_runs, home_hits, home_errs, home_result,
			away_name, away_runs, away_hits, away_errs, away_result,
			you_are, is_cpu, you_runs, opp_runs
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err = stmt.Exec(
			username, platform, mode, r.ID, r.DateISO, r.Mode,
			r.Home.Name, r.Home.Runs, r.Home.Hits, r.Home.Errors, r.Home.Result,
			r.Away.Name, r.Away.Runs, r.Away.Hits, r.Away.Errors, r.Away.Result,
			int(r.YouAre), boolInt(r.IsCPU), r.YouRuns, r.OppRuns,
		)
		if err != nil {
			return fmt.Errorf("insert history row %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// ListHistory returns the stored rows for one scope, newest first with
// undated rows last.
func (db *DB) ListHistory(username, platform, mode string) ([]model.GameRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, date_iso, game_mode,
		       home_name, home_runs, home_hits, home_errs, home_result,
		       away_name, away_runs, away_hits, away_errs, away_result,
		       you_are, is_cpu, you_runs, opp_runs
		FROM history
		WHERE username = ? AND platform = ? AND mode = ?
		ORDER BY CASE WHEN date_iso = '' THEN 1 ELSE 0 END, date_iso DESC`,
		username, platform, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameRow
	for rows.Next() {
		var r model.GameRow
		var youAre, isCPU int
		if err := rows.Scan(
			&r.ID, &r.DateISO, &r.Mode,
			&r.Home.Name, &r.Home.Runs, &r.Home.Hits, &r.Home.Errors, &r.Home.Result,
			&r.Away.Name, &r.Away.Runs, &r.Away.Hits, &r.Away.Errors, &r.Away.Result,
			&youAre, &isCPU, &r.YouRuns, &r.OppRuns,
		); err != nil {
			return nil, err
		}
		r.YouAre = model.Side(youAre)
		r.IsCPU = isCPU == 1
		r.IsOnline = !r.IsCPU
		if r.DateISO != "" {
			if t, err := time.Parse("2006-01-02T15:04:05.000Z", r.DateISO); err == nil {
				r.Date = t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetGameLog loads a cached parsed log. The second return is false on a miss.
func (db *DB) GetGameLog(username, id string) (*CachedGame, bool, error) {
	var payload string
	err := db.conn.QueryRow(
		"SELECT payload FROM game_logs WHERE id = ? AND username = ?",
		id, username,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cg CachedGame
	if err := json.Unmarshal([]byte(payload), &cg); err != nil {
		return nil, false, fmt.Errorf("decode cached game %s: %w", id, err)
	}
	return &cg, true, nil
}

// PutGameLog stores a parsed log, replacing any previous copy.
func (db *DB) PutGameLog(username, id string, cg *CachedGame) error {
	payload, err := json.Marshal(cg)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO game_logs(id, username, fetched_at, payload)
		VALUES (?, ?, ?, ?)`,
		id, username, time.Now().UTC().Format(time.RFC3339), string(payload),
	)
	return err
}

// CountGameLogs reports how many parsed logs are cached for a user.
func (db *DB) CountGameLogs(username string) (int, error) {
	var n int
	err := db.conn.QueryRow(
		"SELECT COUNT(1) FROM game_logs WHERE username = ?", username,
	).Scan(&n)
	return n, err
}

// DropUser removes every stored row for the given username.
func (db *DB) DropUser(username string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM history WHERE username = ?", username); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM game_logs WHERE username = ?", username); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadItems returns the persisted items snapshot, if any.
func (db *DB) LoadItems() ([]show.Item, time.Time, error) {
	var fetchedAt, payload string
	err := db.conn.QueryRow("SELECT fetched_at, payload FROM items_snapshot WHERE id = 1").
		Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var items []show.Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode items snapshot: %w", err)
	}
	at, _ := time.Parse(time.RFC3339, fetchedAt)
	return items, at, nil
}

// SaveItems replaces the persisted items snapshot.
func (db *DB) SaveItems(items []show.Item, fetchedAt time.Time) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO items_snapshot(id, fetched_at, payload)
		VALUES (1, ?, ?)`,
		fetchedAt.UTC().Format(time.RFC3339), string(payload),
	)
	return err
}
