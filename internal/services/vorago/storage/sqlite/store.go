// Package sqlite provides a SQLite-backed game store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/vorago/internal/platform/grpc/pagination"
	sqlitemigrate "github.com/louisbranch/vorago/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/vorago/internal/services/vorago/storage"
	"github.com/louisbranch/vorago/internal/services/vorago/storage/filter"
	"github.com/louisbranch/vorago/internal/services/vorago/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrInvalidPageToken reports a page token issued for another query.
var ErrInvalidPageToken = pagination.ErrInvalidPageToken

const gameColumns = `id, seed, snapshot_json, created_at, updated_at`

// Store persists games in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite game store and applies embedded migrations. The path
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// summary is the denormalized projection of a snapshot used by listings.
type summary struct {
	status       string
	aiEnabled    int
	aiDifficulty string
	winner       int
	round        int
	snapshot     []byte
}

func summarize(record storage.GameRecord) (summary, error) {
	data, err := json.Marshal(record.Snapshot)
	if err != nil {
		return summary{}, fmt.Errorf("encode snapshot: %w", err)
	}
	out := summary{
		status:       record.Status(),
		aiDifficulty: string(record.Snapshot.AI.Difficulty),
		winner:       int(record.Snapshot.Winner),
		round:        record.Snapshot.Round,
		snapshot:     data,
	}
	if record.Snapshot.AI.Enabled {
		out.aiEnabled = 1
	}
	return out, nil
}

// CreateGame inserts one game record.
func (s *Store) CreateGame(ctx context.Context, record storage.GameRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("game id is required")
	}
	sum, err := summarize(record)
	if err != nil {
		return err
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO games (
		   id, status, ai_enabled, ai_difficulty, winner, round,
		   seed, snapshot_json, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sum.status, sum.aiEnabled, sum.aiDifficulty, sum.winner, sum.round,
		int64(record.Seed), sum.snapshot, toMillis(createdAt), toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// GetGame returns one game by id.
func (s *Store) GetGame(ctx context.Context, id string) (storage.GameRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GameRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.GameRecord{}, fmt.Errorf("game id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	record, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.GameRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.GameRecord{}, fmt.Errorf("get game: %w", err)
	}
	return record, nil
}

// SaveGame replaces the snapshot and summary columns of an existing game.
func (s *Store) SaveGame(ctx context.Context, record storage.GameRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	sum, err := summarize(record)
	if err != nil {
		return err
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE games
		    SET status = ?, ai_enabled = ?, ai_difficulty = ?, winner = ?, round = ?,
		        snapshot_json = ?, updated_at = ?
		  WHERE id = ?`,
		sum.status, sum.aiEnabled, sum.aiDifficulty, sum.winner, sum.round,
		sum.snapshot, toMillis(updatedAt), strings.TrimSpace(record.ID),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListGames returns one page of games, oldest first. Ordering by creation
// keeps offsets stable while games in the listing are being played.
func (s *Store) ListGames(ctx context.Context, query storage.ListQuery) (storage.GamePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.GamePage{}, err
	}
	if query.PageSize <= 0 {
		return storage.GamePage{}, fmt.Errorf("page size must be greater than zero")
	}
	cond, err := filter.Parse(query.Filter)
	if err != nil {
		return storage.GamePage{}, err
	}
	token, err := pagination.ParseToken(strings.TrimSpace(query.PageToken), pagination.QueryChecksum(strings.TrimSpace(query.Filter)))
	if err != nil {
		return storage.GamePage{}, err
	}

	where := ""
	if !cond.Empty() {
		where = " WHERE " + cond.Clause
	}
	args := append(append([]any{}, cond.Params...), query.PageSize+1, token.Offset)
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games`+where+`
		  ORDER BY created_at ASC, id ASC
		  LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	page := storage.GamePage{Games: make([]storage.GameRecord, 0, query.PageSize)}
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return storage.GamePage{}, fmt.Errorf("list games: %w", err)
		}
		page.Games = append(page.Games, record)
	}
	if err := rows.Err(); err != nil {
		return storage.GamePage{}, fmt.Errorf("list games: %w", err)
	}
	page.NextPageToken = token.Next(query.PageSize, len(page.Games))
	if len(page.Games) > query.PageSize {
		page.Games = page.Games[:query.PageSize]
	}
	return page, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (storage.GameRecord, error) {
	var (
		record    storage.GameRecord
		seed      int64
		data      []byte
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&record.ID, &seed, &data, &createdAt, &updatedAt); err != nil {
		return storage.GameRecord{}, err
	}
	if err := json.Unmarshal(data, &record.Snapshot); err != nil {
		return storage.GameRecord{}, fmt.Errorf("decode snapshot %s: %w", record.ID, err)
	}
	record.Seed = uint64(seed)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.GameStore = (*Store)(nil)
