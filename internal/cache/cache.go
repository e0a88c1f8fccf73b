// Package cache provides a local SQLite-backed cache of record items,
// so applications can search and display items while offline. It
// supports both the pure Go driver (modernc.org/sqlite, the default)
// and mattn/go-sqlite3 behind the cgo_sqlite build tag.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/internal/logging"
)

// timeLayout keeps stored timestamps lexicographically sortable.
const timeLayout = "2006-01-02T15:04:05"

const schema = `
CREATE TABLE IF NOT EXISTS things (
	id        TEXT PRIMARY KEY,
	version   TEXT NOT NULL,
	type_id   TEXT NOT NULL,
	state     TEXT NOT NULL,
	effective TEXT NOT NULL DEFAULT '',
	updated   TEXT NOT NULL DEFAULT '',
	xml       BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
	thing_id TEXT NOT NULL REFERENCES things(id) ON DELETE CASCADE,
	tag      TEXT NOT NULL,
	PRIMARY KEY (thing_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_things_type ON things(type_id);
CREATE INDEX IF NOT EXISTS idx_things_effective ON things(effective);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);
`

// DriverName returns the SQL driver name in use.
func DriverName() string { return driverName }

// DriverType identifies the underlying implementation: "purego" for
// modernc.org/sqlite, "cgo" for mattn/go-sqlite3.
func DriverType() string { return driverType }

// memoTTL bounds how long a parsed item is served without re-reading
// the database. The database is the source of truth; the memo only
// skips repeat XML parses.
const memoTTL = time.Minute

// Cache is a local item cache over one SQLite database.
type Cache struct {
	db    *sql.DB
	items *memo[uuid.UUID, *thing.Thing]
}

// Open opens (creating if needed) a cache database at path. Use
// ":memory:" for an ephemeral cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open cache %s", path)
	}
	// SQLite supports one writer; serialize access through one conn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize cache schema")
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	return &Cache{
		db:    db,
		items: newMemo[uuid.UUID, *thing.Thing](memoTTL),
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put inserts or replaces an item. The item must have a key.
func (c *Cache) Put(ctx context.Context, item *thing.Thing) error {
	if item.Key == nil {
		return errors.NewValidation("thing-id", "item has no key; only committed items can be cached")
	}
	data, err := item.Serialize()
	if err != nil {
		return err
	}

	start := time.Now()
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin cache transaction")
	}
	defer tx.Rollback()

	var effective, updated string
	if !item.EffectiveDate.IsZero() {
		effective = item.EffectiveDate.Format(timeLayout)
	}
	if item.Updated != nil && !item.Updated.Timestamp.IsZero() {
		updated = item.Updated.Timestamp.Format(timeLayout)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO things (id, version, type_id, state, effective, updated, xml)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			type_id = excluded.type_id,
			state = excluded.state,
			effective = excluded.effective,
			updated = excluded.updated,
			xml = excluded.xml`,
		item.Key.ID.String(), item.Key.VersionStamp.String(), item.TypeID.String(),
		string(item.State), effective, updated, data)
	if err != nil {
		return errors.Wrap(err, "store item")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE thing_id = ?`, item.Key.ID.String()); err != nil {
		return errors.Wrap(err, "clear item tags")
	}
	for _, tag := range item.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tags (thing_id, tag) VALUES (?, ?)`,
			item.Key.ID.String(), tag); err != nil {
			return errors.Wrap(err, "store item tag")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit cache transaction")
	}
	// The caller keeps ownership of item, so memoize the stored bytes on
	// the next Get instead of aliasing it here.
	c.items.delete(item.Key.ID)
	logging.CacheOperation("put", 1, time.Since(start), "item_id", item.Key.ID.String())
	return nil
}

// Get returns the cached item with the given ID.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*thing.Thing, error) {
	if item, ok := c.items.get(id); ok {
		return item, nil
	}
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT xml FROM things WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("thing", id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "load item")
	}
	item, err := thing.Parse(data)
	if err != nil {
		return nil, err
	}
	c.items.set(id, item)
	return item, nil
}

// Delete removes an item and its tags.
func (c *Cache) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM things WHERE id = ?`, id.String())
	if err != nil {
		return errors.Wrap(err, "delete item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("thing", id.String())
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tags WHERE thing_id = ?`, id.String()); err != nil {
		return errors.Wrap(err, "delete item tags")
	}
	c.items.delete(id)
	return nil
}

// Count returns the number of cached items.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM things`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count items")
	}
	return n, nil
}

// Filter restricts a Search. Zero fields match everything.
type Filter struct {
	TypeID uuid.UUID
	State  thing.State
	// Tags must all be present on a matching item.
	Tags []string
	// After and Before bound the effective date, inclusive of After and
	// exclusive of Before.
	After  time.Time
	Before time.Time
	// Limit caps the number of results; 0 means no cap.
	Limit int
}

// Search returns items matching the filter, newest effective date first.
func (c *Cache) Search(ctx context.Context, f Filter) ([]*thing.Thing, error) {
	var (
		where []string
		args  []any
	)
	if f.TypeID != uuid.Nil {
		where = append(where, "type_id = ?")
		args = append(args, f.TypeID.String())
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(f.State))
	}
	for _, tag := range f.Tags {
		where = append(where, "EXISTS (SELECT 1 FROM tags WHERE tags.thing_id = things.id AND tags.tag = ?)")
		args = append(args, tag)
	}
	if !f.After.IsZero() {
		where = append(where, "effective >= ?")
		args = append(args, f.After.Format(timeLayout))
	}
	if !f.Before.IsZero() {
		where = append(where, "effective < ?")
		args = append(args, f.Before.Format(timeLayout))
	}

	query := `SELECT xml FROM things`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY effective DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search items")
	}
	defer rows.Close()

	var items []*thing.Thing
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scan item")
		}
		item, err := thing.Parse(data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate items")
	}
	logging.CacheOperation("search", len(items), time.Since(start))
	return items, nil
}
