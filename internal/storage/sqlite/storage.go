package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/storage"
)

// Storage is a SQLite-backed implementation of the storage interface.
// Games are kept as a JSON document alongside indexed columns.
type Storage struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pragmas and migrations
func Open(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent swaps
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}

	if err := migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players(id, display_name, is_guest, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name=excluded.display_name, is_guest=excluded.is_guest`,
		string(player.ID), player.DisplayName, player.IsGuest, toUnix(player.CreatedAt))
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		p       model.Player
		pid     string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, is_guest, created_at FROM players WHERE id=?`, string(id),
	).Scan(&pid, &p.DisplayName, &p.IsGuest, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	p.ID = model.PlayerID(pid)
	p.CreatedAt = fromUnix(created)
	return &p, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id=?`, string(id))
	return err
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registered_players(player_id, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			username=excluded.username,
			password_hash=excluded.password_hash,
			updated_at=excluded.updated_at`,
		string(rp.PlayerID), rp.Username, rp.PasswordHash, toUnix(rp.CreatedAt), toUnix(rp.UpdatedAt))
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	return s.scanRegisteredPlayer(s.db.QueryRowContext(ctx, `
		SELECT player_id, username, password_hash, created_at, updated_at
		FROM registered_players WHERE player_id=?`, string(playerID)))
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	return s.scanRegisteredPlayer(s.db.QueryRowContext(ctx, `
		SELECT player_id, username, password_hash, created_at, updated_at
		FROM registered_players WHERE username=?`, username))
}

func (s *Storage) scanRegisteredPlayer(row *sql.Row) (*model.RegisteredPlayer, error) {
	var (
		rp               model.RegisteredPlayer
		pid              string
		created, updated int64
	)
	err := row.Scan(&pid, &rp.Username, &rp.PasswordHash, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	rp.PlayerID = model.PlayerID(pid)
	rp.CreatedAt = fromUnix(created)
	rp.UpdatedAt = fromUnix(updated)
	return &rp, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO games(id, player_id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_id=excluded.player_id,
			data=excluded.data,
			updated_at=excluded.updated_at`,
		string(game.ID), string(game.PlayerID), string(data), toUnix(game.UpdatedAt))
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM games WHERE id=?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=?`, string(id))
	return err
}

func (s *Storage) GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM games WHERE player_id=? ORDER BY updated_at DESC`, string(playerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []*model.Game{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var game model.Game
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			continue // Skip invalid data
		}
		games = append(games, &game)
	}
	return games, rows.Err()
}

// High score operations

func (s *Storage) SaveHighScore(ctx context.Context, hs *model.HighScore) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO high_scores(player_id, display_name, score, game_id, achieved_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			display_name=excluded.display_name,
			score=excluded.score,
			game_id=excluded.game_id,
			achieved_at=excluded.achieved_at`,
		string(hs.PlayerID), hs.DisplayName, hs.Score, string(hs.GameID), toUnix(hs.AchievedAt))
	return err
}

func (s *Storage) GetHighScore(ctx context.Context, playerID model.PlayerID) (*model.HighScore, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT player_id, display_name, score, game_id, achieved_at
		FROM high_scores WHERE player_id=?`, string(playerID))
	hs, err := scanHighScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrHighScoreNotFound
	}
	return hs, err
}

func (s *Storage) TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, display_name, score, game_id, achieved_at
		FROM high_scores
		ORDER BY score DESC, achieved_at ASC, player_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []*model.HighScore{}
	for rows.Next() {
		hs, err := scanHighScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, hs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	storage.SortHighScores(scores)
	return scores, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHighScore(row scanner) (*model.HighScore, error) {
	var (
		hs       model.HighScore
		pid, gid string
		achieved int64
	)
	if err := row.Scan(&pid, &hs.DisplayName, &hs.Score, &gid, &achieved); err != nil {
		return nil, err
	}
	hs.PlayerID = model.PlayerID(pid)
	hs.GameID = model.GameID(gid)
	hs.AchievedAt = fromUnix(achieved)
	return &hs, nil
}

// Timestamps are stored as unix nanoseconds; 0 is the zero time
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
