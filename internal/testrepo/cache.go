package testrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/sprite-ai/testscope/internal/model"
)

// Cache stores complete inventories in SQLite as zstd-compressed JSON.
type Cache struct {
	conn *sql.DB
	ttl  time.Duration
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	now  func() time.Time
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS inventory (
			project_id INTEGER NOT NULL,
			suite_id INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			case_count INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (project_id, suite_id)
		)`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Cache{conn: conn, ttl: ttl, enc: enc, dec: dec, now: time.Now}, nil
}

// Close releases the database and codecs.
func (c *Cache) Close() error {
	c.dec.Close()
	_ = c.enc.Close()
	return c.conn.Close()
}

// Get returns the cached inventory of a suite. ok is false on a miss or
// when the entry is older than the TTL.
func (c *Cache) Get(ctx context.Context, projectID, suiteID int) (cases []model.TestCase, ok bool, err error) {
	var (
		fetchedAt int64
		payload   []byte
	)
	row := c.conn.QueryRowContext(ctx,
		`SELECT fetched_at, payload FROM inventory WHERE project_id = ? AND suite_id = ?`,
		projectID, suiteID)
	if err := row.Scan(&fetchedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}
	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	data, err := c.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cache entry: %w", err)
	}
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	return cases, true, nil
}

// Put replaces the cached inventory of a suite.
func (c *Cache) Put(ctx context.Context, projectID, suiteID int, cases []model.TestCase) error {
	data, err := json.Marshal(cases)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	payload := c.enc.EncodeAll(data, nil)
	_, err = c.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO inventory (project_id, suite_id, fetched_at, case_count, payload) VALUES (?, ?, ?, ?, ?)`,
		projectID, suiteID, c.now().Unix(), len(cases), payload)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached inventory of a suite.
func (c *Cache) Invalidate(ctx context.Context, projectID, suiteID int) error {
	_, err := c.conn.ExecContext(ctx, `DELETE FROM inventory WHERE project_id = ? AND suite_id = ?`, projectID, suiteID)
	return err
}

// CachedSource serves inventories from a Cache and falls back to Live on a
// miss. Cache failures are logged and never fail a fetch.
type CachedSource struct {
	Live   Source
	Cache  *Cache
	Logger zerolog.Logger
}

// FetchInventory implements Source.
func (s *CachedSource) FetchInventory(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error) {
	log := s.Logger.With().Int("project", projectID).Int("suite", suiteID).Logger()

	cases, ok, err := s.Cache.Get(ctx, projectID, suiteID)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("inventory cache read failed")
	case ok:
		log.Debug().Int("cases", len(cases)).Msg("inventory cache hit")
		return cases, nil
	}

	cases, err = s.Live.FetchInventory(ctx, projectID, suiteID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Put(ctx, projectID, suiteID, cases); err != nil {
		log.Warn().Err(err).Msg("inventory cache write failed")
	}
	return cases, nil
}
