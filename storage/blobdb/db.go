// Package blobdb implements the whole-document store: a single JSON
// database document held in memory behind a TTL cache, persisted to a
// local file and mirrored best-effort to remote stores.
package blobdb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/storage/document"
)

const freshKey = "document"

// TTL bounds; values outside are clamped.
const (
	minTTL = 500 * time.Millisecond
	maxTTL = 30 * time.Second
)

type Options struct {
	// Path is the local database file. Empty disables file persistence.
	Path string
	// TTL is how long a loaded document is considered fresh.
	TTL time.Duration
	// Remotes are tried in order on refresh and pushed to on every save.
	Remotes []RemoteStore
	// Logger is optional; a no-op logger is used when nil.
	Logger     core.Logger
	MaxRetries int
	MaxBackoff time.Duration
}

// nopLogger stands in when Options.Logger is not set.
type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// DB owns the database document. All access goes through View and
// Update so the TTL cache and the mirrors stay coherent.
type DB struct {
	mu      sync.RWMutex
	doc     *document.Document
	fresh   *gocache.Cache
	path    string
	remotes []RemoteStore
	logger  core.Logger

	maxRetries int
	maxBackoff time.Duration

	watchMu  sync.Mutex
	watchers []chan int64
	closed   bool
}

// New opens the store, loading the document from the first available
// source: remotes in order, then the local file, then the seeded default.
func New(opts Options) (*DB, error) {
	ttl := opts.TTL
	if ttl < minTTL {
		ttl = minTTL
	}
	if ttl > maxTTL {
		ttl = maxTTL
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	db := &DB{
		fresh:      gocache.New(ttl, 2*ttl),
		path:       opts.Path,
		remotes:    opts.Remotes,
		logger:     logger,
		maxRetries: maxRetries,
		maxBackoff: maxBackoff,
	}

	doc := db.fetchRemotes(context.Background())
	if doc == nil {
		var err error
		if doc, err = db.readFile(); err != nil {
			db.logger.Warn("blobdb: local file unavailable, seeding default document", "error", err)
		}
	}
	if doc == nil {
		doc = document.Default()
	}
	db.doc = doc
	db.fresh.SetDefault(freshKey, struct{}{})
	if err := db.writeFile(doc); err != nil {
		return nil, err
	}
	return db, nil
}

// View runs fn with read access to a fresh document. fn must not retain
// or mutate the document.
func (db *DB) View(ctx context.Context, fn func(doc *document.Document) error) error {
	if err := db.refresh(ctx); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.doc)
}

// Update runs fn with write access to a fresh document, then bumps the
// version, persists the file, refreshes the cache and pushes mirrors.
func (db *DB) Update(ctx context.Context, fn func(doc *document.Document) error) error {
	if err := db.refresh(ctx); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := fn(db.doc); err != nil {
		return err
	}
	db.doc.Version++
	db.doc.LastUpdate = time.Now().UTC()
	return db.persistLocked()
}

// Snapshot returns a deep copy of the current document.
func (db *DB) Snapshot(ctx context.Context) (*document.Document, error) {
	var out *document.Document
	err := db.View(ctx, func(doc *document.Document) error {
		var cerr error
		out, cerr = doc.Clone()
		return cerr
	})
	return out, err
}

// Replace swaps in a whole incoming document (the sync endpoint's PUT).
// Last writer wins: an incoming document behind the current version is
// still accepted, with the gap logged. The accepted document always gets
// the next version number.
func (db *DB) Replace(ctx context.Context, incoming *document.Document) (int64, error) {
	if !incoming.Valid() {
		return 0, errors.New("invalid document")
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	if gap := db.doc.Version - incoming.Version; gap > 0 {
		db.logger.Warn("blobdb: accepting stale document write",
			"currentVersion", db.doc.Version, "incomingVersion", incoming.Version, "gap", gap)
	}
	doc, err := incoming.Clone()
	if err != nil {
		return 0, err
	}
	doc.Version = db.doc.Version + 1
	doc.LastUpdate = time.Now().UTC()
	db.doc = doc
	if err = db.persistLocked(); err != nil {
		return 0, err
	}
	return doc.Version, nil
}

// Watch returns a channel receiving the new version after every accepted
// write. Notifications are best-effort; slow receivers miss versions.
func (db *DB) Watch() <-chan int64 {
	ch := make(chan int64, 1)
	db.watchMu.Lock()
	defer db.watchMu.Unlock()
	if db.closed {
		close(ch)
		return ch
	}
	db.watchers = append(db.watchers, ch)
	return ch
}

func (db *DB) Close() error {
	db.watchMu.Lock()
	defer db.watchMu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	for _, ch := range db.watchers {
		close(ch)
	}
	db.watchers = nil
	return nil
}

// refresh re-fetches the document from the remotes once the TTL cache
// has expired. Remote failures fall back to whatever is held locally.
func (db *DB) refresh(ctx context.Context) error {
	if _, ok := db.fresh.Get(freshKey); ok {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	// re-check; another goroutine may have refreshed while we waited
	if _, ok := db.fresh.Get(freshKey); ok {
		return nil
	}

	if doc := db.fetchRemotes(ctx); doc != nil {
		db.doc = doc
		if err := db.writeFile(doc); err != nil {
			db.logger.Warn("blobdb: persisting refreshed document", "error", err)
		}
	}
	db.fresh.SetDefault(freshKey, struct{}{})
	return nil
}

func (db *DB) fetchRemotes(ctx context.Context) *document.Document {
	for _, remote := range db.remotes {
		doc, err := remote.Fetch(ctx)
		if err != nil {
			db.logger.Debug("blobdb: remote fetch failed", "remote", remote.Name(), "error", err)
			continue
		}
		if doc.Valid() {
			return doc
		}
	}
	return nil
}

// persistLocked writes the file, marks the cache fresh, notifies the
// watchers and kicks off the mirror pushes. Callers hold db.mu.
func (db *DB) persistLocked() error {
	if err := db.writeFile(db.doc); err != nil {
		return errors.Wrap(err, "persisting document")
	}
	db.fresh.SetDefault(freshKey, struct{}{})

	doc, err := db.doc.Clone()
	if err != nil {
		return err
	}
	db.notify(doc.Version)
	go db.pushRemotes(doc)
	return nil
}

func (db *DB) notify(version int64) {
	db.watchMu.Lock()
	defer db.watchMu.Unlock()
	for _, ch := range db.watchers {
		select {
		case ch <- version:
		default:
		}
	}
}

// pushRemotes mirrors the document to every remote with capped
// exponential backoff. Failures are logged and masked; the local write
// already succeeded.
func (db *DB) pushRemotes(doc *document.Document) {
	for _, remote := range db.remotes {
		remote := remote
		err := withRetry(db.maxRetries, db.maxBackoff, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return remote.Push(ctx, doc)
		})
		if err != nil {
			db.logger.Warn("blobdb: remote push failed", "remote", remote.Name(), "version", doc.Version, "error", err)
		}
	}
}

func (db *DB) readFile() (*document.Document, error) {
	if db.path == "" {
		return nil, nil
	}
	raw, err := ioutil.ReadFile(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc document.Document
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing database file")
	}
	if !doc.Valid() {
		return nil, errors.New("malformed database file")
	}
	return &doc, nil
}

func (db *DB) writeFile(doc *document.Document) error {
	if db.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(db.path), 0755); err != nil {
		return err
	}
	tmp := db.path + ".tmp"
	if err = ioutil.WriteFile(tmp, raw, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, db.path)
}
