package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/rankfuse/core"
	"github.com/poiesic/rankfuse/storage"
)

const vectorKeyPrefix = "embvec"

// Cache is a BadgerDB-backed embedding cache.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.VectorCache = (*Cache)(nil)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
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

// OpenCache opens a BadgerDB embedding cache at the specified path.
// Creates the directory if it doesn't exist. With inMemory set, the path
// is ignored and nothing is persisted.
func OpenCache(filePath string, inMemory bool) (*Cache, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{
		db:     db,
		logger: slog.Default().With("component", "badger-cache"),
	}, nil
}

// NewMemoryCache creates an in-memory embedding cache for testing.
// Caller must close the cache when done.
func NewMemoryCache() (*Cache, error) {
	return OpenCache("", true)
}

// Get returns the cached vector for key, and whether it was present.
func (c *Cache) Get(_ context.Context, key core.ID) ([]float32, bool, error) {
	var vector []float32
	err := c.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := storage.UnmarshalVector(val)
			if err != nil {
				return err
			}
			vector = decoded
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// Put stores a vector under key, replacing any previous entry.
func (c *Cache) Put(_ context.Context, key core.ID, vector []float32) error {
	return c.db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeVectorKey(key), storage.MarshalVector(vector))
	})
}

// Close closes the BadgerDB database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// makeVectorKey generates a key for a cached vector by ID.
func makeVectorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", vectorKeyPrefix, id))
}
