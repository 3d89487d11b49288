package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rentyard/equipsearch/core"
)

const resultKeyPrefix = "searchres"

// Metrics are the store's hit/miss counters. Diagnostic only.
type Metrics struct {
	Hits    int64
	Misses  int64
	Expired int64
}

// Store is a TTL result cache backed by BadgerDB.
//
// Values are framed as an 8-byte big-endian insertion timestamp (unix
// microseconds) followed by the JSON-encoded result, so the staleness check
// reads the header without decoding the payload.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time

	hits    atomic.Int64
	misses  atomic.Int64
	expired atomic.Int64
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces the wall clock used for TTL checks. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		if now == nil {
			now = time.Now
		}
		s.now = now
		return nil
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// NewMemoryStore opens an in-memory store. This is the default for the
// search client; nothing outlives the process.
func NewMemoryStore(opts ...Option) (*Store, error) {
	return open("", true, opts...)
}

// NewStore opens a store persisted under dirPath, creating the directory if
// needed. A persisted store keeps the warm cache across restarts; it is
// still exclusively in-process.
func NewStore(dirPath string, opts ...Option) (*Store, error) {
	return open(dirPath, false, opts...)
}

func open(dirPath string, inMemory bool, opts ...Option) (*Store, error) {
	var badgerOpts badger.Options

	if inMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dirPath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(dirPath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(dirPath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dirPath)
		}
		badgerOpts = badger.DefaultOptions(dirPath)
	}

	s := &Store{
		logger: slog.Default().With("component", "result-cache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	badgerOpts.Logger = &badgerLoggerAdapter{logger: s.logger}
	badgerOpts.Compression = options.None

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	s.db = db

	return s, nil
}

// Get returns the cached result for key if an entry exists and is younger
// than ttl. Stale entries count as misses and are left in place.
func (s *Store) Get(key core.ID, ttl time.Duration) (*core.SearchResult, bool) {
	var entry core.CacheEntry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeResultKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := decodeEntry(val)
			if err != nil {
				return err
			}
			entry = decoded
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.logger.Warn("cache read failed", "key", uint64(key), "err", err)
		}
		s.misses.Add(1)
		return nil, false
	}

	if s.now().Sub(entry.InsertedAt) >= ttl {
		s.expired.Add(1)
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	return entry.Result, true
}

// Set stores the result under key, stamped with the current time.
func (s *Store) Set(key core.ID, result *core.SearchResult) error {
	val, err := encodeEntry(core.CacheEntry{Result: result, InsertedAt: s.now()})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeResultKey(key), val)
	})
}

// Metrics returns a snapshot of the hit/miss counters.
func (s *Store) Metrics() Metrics {
	return Metrics{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Expired: s.expired.Load(),
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// makeResultKey generates the badger key for a criteria hash.
func makeResultKey(key core.ID) []byte {
	prefix := resultKeyPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(key))
	return buf
}

func encodeEntry(entry core.CacheEntry) ([]byte, error) {
	payload, err := json.Marshal(entry.Result)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(entry.InsertedAt.UnixMicro()))
	copy(buf[8:], payload)
	return buf, nil
}

func decodeEntry(val []byte) (core.CacheEntry, error) {
	if len(val) < 8 {
		return core.CacheEntry{}, ErrCorruptEntry
	}
	var result core.SearchResult
	if err := json.Unmarshal(val[8:], &result); err != nil {
		return core.CacheEntry{}, err
	}
	return core.CacheEntry{
		Result:     &result,
		InsertedAt: time.UnixMicro(int64(binary.BigEndian.Uint64(val[:8]))),
	}, nil
}
