// Package cache is a Badger-backed TTL cache for responses from external
// services.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/blake2b"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores JSON values under namespaced, hashed keys.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// Options configures a Cache.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	TTL      time.Duration
}

// Open opens (or creates) the cache.
func Open(opts Options, logger *slog.Logger) (*Cache, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil
	bopts.CompactL0OnClose = true

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	logger.Info("lookup cache opened", "path", opts.Path, "in_memory", opts.InMemory, "ttl", opts.TTL)

	return &Cache{db: db, logger: logger, ttl: opts.TTL}, nil
}

// Key hashes parts into a stable key within namespace.
func Key(namespace string, parts ...string) []byte {
	h, _ := blake2b.New256(nil) // only errors for oversized keys
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return []byte(namespace + ":" + hex.EncodeToString(h.Sum(nil)))
}

// Get decodes the value stored at key into dest.
func (c *Cache) Get(key []byte, dest any) error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrMiss
	}
	return err
}

// Set stores value at key with the cache TTL.
func (c *Cache) Set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key.
func (c *Cache) Delete(key []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	c.logger.Info("closing lookup cache")
	return c.db.Close()
}
