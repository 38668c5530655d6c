package iocost

import (
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
)

// Cache is a Badger key-value store of computed collection costs. An empty
// directory makes an in-memory store. The on-disk store is ephemeral: it is
// cleaned when created and removed by Cleanup.
type Cache struct {
	dir string
	db  *badger.DB
	enc gnfmt.GNgob
	log *slog.Logger
}

// NewCache creates a cache at dir. It creates the directory if it doesn't
// exist and cleans any existing data. Nil log means slog.Default().
func NewCache(dir string, log *slog.Logger) (*Cache, error) {
	if log == nil {
		log = slog.Default()
	}
	res := &Cache{dir: dir, log: log}
	if dir == "" {
		return res, nil
	}

	err := gnsys.MakeDir(dir)
	if err != nil {
		return nil, CacheDirError(dir, err)
	}

	err = gnsys.CleanDir(dir)
	if err != nil {
		return nil, CacheDirError(dir, err)
	}

	return res, nil
}

// Open opens the Badger database of the cache.
func (c *Cache) Open() error {
	if c.db != nil {
		c.log.Warn("Cost cache is already open")
		return nil
	}

	options := badger.DefaultOptions(c.dir)
	if c.dir == "" {
		options = options.WithInMemory(true)
	}
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return NewCacheOpenError(c.dir, err)
	}

	c.db = db
	c.log.Debug("Cost cache opened", "dir", c.dir)
	return nil
}

// Close closes the Badger database. Closing a closed cache is a no-op.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil
	return err
}

// Set stores a cost under key.
func (c *Cache) Set(key string, cost float64) error {
	if c.db == nil {
		return ErrCacheNotOpen
	}

	val, err := c.enc.Encode(cost)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// Get returns the cost stored under key. The second value is false if the
// key is not found.
func (c *Cache) Get(key string) (float64, bool, error) {
	if c.db == nil {
		return 0, false, ErrCacheNotOpen
	}

	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil || val == nil {
		return 0, false, err
	}

	var res float64
	if err = c.enc.Decode(val, &res); err != nil {
		return 0, false, err
	}
	return res, true, nil
}

// Cleanup closes the database and removes the data of an on-disk cache.
func (c *Cache) Cleanup() error {
	if err := c.Close(); err != nil {
		return err
	}
	if c.dir == "" {
		return nil
	}

	err := gnsys.CleanDir(c.dir)
	if err != nil {
		c.log.Error("Cannot remove cost cache", "error", err, "dir", c.dir)
		return err
	}
	return nil
}
