// Package badger persists grants in an embedded BadgerDB database so
// they survive restarts.
//
// Grants are stored under the "g:" key prefix, keyed by tree URI, with
// JSON-encoded values. Listing uses a prefix scan, which returns keys in
// byte order and therefore grants ordered by URI.
package badger

import (
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/grant"
)

const keyPrefix = "g:"

// Config configures a Store.
type Config struct {
	// DBPath is the directory holding the database files. It is created
	// if missing.
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the database in memory. DBPath is ignored.
	InMemory bool `mapstructure:"in_memory"`

	// SyncWrites fsyncs every write before it is acknowledged.
	SyncWrites bool `mapstructure:"sync_writes"`

	// GCInterval is how often value log garbage collection runs. Zero
	// disables it.
	GCInterval time.Duration `mapstructure:"gc_interval"`
}

// Store is a grant.Store backed by BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ grant.Store = (*Store)(nil)

// Open opens or creates the database described by cfg.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DBPath == "" && !cfg.InMemory {
		return nil, errors.New(errors.CodeInvalidConfig, "grant store needs a database path")
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithLoggingLevel(badger.WARNING).
		WithLogger(badgerLogger{logger.Sugar()}).
		WithCompression(options.None).
		WithSyncWrites(cfg.SyncWrites)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithContext(
			errors.Wrap(err, errors.CodeIO, "failed to open grant database"),
			"db_path", cfg.DBPath)
	}

	s := &Store{db: db, logger: logger, stop: make(chan struct{})}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.wg.Add(1)
		go s.runGC(cfg.GCInterval)
	}
	return s, nil
}

// Put implements grant.Store.
func (s *Store) Put(g grant.Grant) error {
	if g.URI == "" {
		return errors.New(errors.CodeInvalidInput, "grant has no URI")
	}
	val, err := json.Marshal(g)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to encode grant")
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(g.URI), val)
	})
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeIO, "failed to store grant"), "uri", g.URI)
	}
	return nil
}

// Get implements grant.Store.
func (s *Store) Get(uri string) (grant.Grant, error) {
	var g grant.Grant
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(uri))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	if err != nil {
		return grant.Grant{}, mapErr(err, uri)
	}
	return g, nil
}

// List implements grant.Store.
func (s *Store) List() ([]grant.Grant, error) {
	var out []grant.Grant
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var g grant.Grant
				if err := json.Unmarshal(val, &g); err != nil {
					s.logger.Warn("skipping undecodable grant", zap.ByteString("key", item.Key()), zap.Error(err))
					return nil
				}
				out = append(out, g)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "failed to list grants")
	}
	return out, nil
}

// Delete implements grant.Store.
func (s *Store) Delete(uri string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(uri)); err != nil {
			return err
		}
		return txn.Delete(key(uri))
	})
	if err != nil {
		return mapErr(err, uri)
	}
	return nil
}

// Close stops garbage collection and closes the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		if cerr := s.db.Close(); cerr != nil {
			err = errors.Wrap(cerr, errors.CodeIO, "failed to close grant database")
		}
	})
	return err
}

func (s *Store) runGC(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for {
				// Repeat until a pass rewrites nothing.
				if err := s.db.RunValueLogGC(0.5); err != nil {
					if !stderrors.Is(err, badger.ErrNoRewrite) {
						s.logger.Debug("value log gc stopped", zap.Error(err))
					}
					break
				}
			}
		}
	}
}

func key(uri string) []byte {
	return []byte(keyPrefix + uri)
}

func mapErr(err error, uri string) error {
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.WithContext(errors.New(errors.CodeNotFound, "no grant for URI"), "uri", uri)
	}
	return errors.WithContext(errors.Wrap(err, errors.CodeIO, "grant database error"), "uri", uri)
}

// badgerLogger routes badger's logging through zap.
type badgerLogger struct {
	l *zap.SugaredLogger
}

func (b badgerLogger) Errorf(format string, args ...interface{})   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...interface{}) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...interface{})    { b.l.Infof(format, args...) }
func (b badgerLogger) Debugf(format string, args ...interface{})   { b.l.Debugf(format, args...) }
