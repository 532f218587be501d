// Package archive stores finished games in a local SQLite database so
// players can review what they wrote after the relay forgets the session.
package archive

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/mirrorpad/internal/doc"
	"github.com/roach88/mirrorpad/internal/session"
)

//go:embed schema.sql
var schemaSQL string

// Game is one archived session.
type Game struct {
	ID           int64
	SessionToken string
	ArchivedAt   time.Time
}

// Archive is a SQLite-backed session.Archiver.
// A single connection avoids SQLITE_BUSY; writes are rare (one per game).
type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive database at path. Idempotent; the
// schema is applied on every open.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// SaveGame archives one finished game atomically: the games row and all
// solution rows commit together or not at all.
func (a *Archive) SaveGame(sessionToken string, solutions []session.Solution) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO games (session_token) VALUES (?)`,
		sessionToken,
	)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", sessionToken, err)
	}
	gameID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("game id: %w", err)
	}

	for _, sol := range solutions {
		_, err := tx.Exec(
			`INSERT INTO solutions (game_id, problem_id, prompt, difficulty, body)
			 VALUES (?, ?, ?, ?, ?)`,
			gameID, int64(sol.ProblemID), sol.Prompt, sol.Difficulty,
			strings.Join(sol.Lines, "\n"),
		)
		if err != nil {
			return fmt.Errorf("insert solution %d: %w", sol.ProblemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}

// ListGames returns all archived games, newest first.
func (a *Archive) ListGames() ([]Game, error) {
	rows, err := a.db.Query(
		`SELECT id, session_token, archived_at FROM games ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var g Game
		var at string
		if err := rows.Scan(&g.ID, &g.SessionToken, &at); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		// strftime above always emits this layout.
		g.ArchivedAt, err = time.Parse("2006-01-02T15:04:05.000Z", at)
		if err != nil {
			return nil, fmt.Errorf("parse archived_at %q: %w", at, err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Solutions returns the solutions of one archived game in problem order.
func (a *Archive) Solutions(gameID int64) ([]session.Solution, error) {
	rows, err := a.db.Query(
		`SELECT problem_id, prompt, difficulty, body FROM solutions
		 WHERE game_id = ? ORDER BY problem_id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	defer rows.Close()

	var out []session.Solution
	for rows.Next() {
		var sol session.Solution
		var pid int64
		var body string
		if err := rows.Scan(&pid, &sol.Prompt, &sol.Difficulty, &body); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		sol.ProblemID = doc.ProblemID(pid)
		sol.Lines = strings.Split(body, "\n")
		out = append(out, sol)
	}
	return out, rows.Err()
}
