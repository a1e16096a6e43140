package conversation

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/biograph/pkg/types"
)

const archiveKeyPrefix = "conversation/"

// BadgerArchive persists evicted conversations to an embedded Badger store so
// expired sessions can still be audited after the in-memory store lets go of
// them.
type BadgerArchive struct {
	db *badger.DB
}

// NewBadgerArchive opens (or creates) a Badger database at path.
func NewBadgerArchive(path string) (*BadgerArchive, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	return &BadgerArchive{db: db}, nil
}

// Archive writes the conversation under its ID. An archived conversation
// overwrites any earlier archive of the same ID.
func (a *BadgerArchive) Archive(conv *types.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation %s: %w", conv.ID, err)
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(archiveKey(conv.ID), data)
	})
}

// Load retrieves an archived conversation, or nil when none exists.
func (a *BadgerArchive) Load(id string) (*types.Conversation, error) {
	var conv *types.Conversation
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(archiveKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			conv = &types.Conversation{}
			return json.Unmarshal(val, conv)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load archived conversation %s: %w", id, err)
	}
	return conv, nil
}

// IDs lists the identifiers of all archived conversations.
func (a *BadgerArchive) IDs() ([]string, error) {
	var ids []string
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(archiveKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Close releases the underlying database.
func (a *BadgerArchive) Close() error {
	return a.db.Close()
}

func archiveKey(id string) []byte {
	return []byte(archiveKeyPrefix + id)
}
