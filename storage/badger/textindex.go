package badger

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

// TextIndexRepository implements storage.TextIndexRepository for BadgerDB.
type TextIndexRepository struct {
	backend *Backend
}

var _ storage.TextIndexRepository = (*TextIndexRepository)(nil)

// NewTextIndexRepository creates a new TextIndexRepository.
func NewTextIndexRepository(backend *Backend) *TextIndexRepository {
	return &TextIndexRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *TextIndexRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TextIndexRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEntries stores text entries keyed by OGRN.
func (r *TextIndexRepository) PutEntries(ctx context.Context, entries map[string]*core.TextEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for ogrn, entry := range entries {
			if err := tx.Set(makeTextEntryKey(ogrn), storage.MarshalTextEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves the text entry for one organization.
func (r *TextIndexRepository) GetEntry(ctx context.Context, ogrn string) (*core.TextEntry, error) {
	var result *core.TextEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTextEntryKey(ogrn))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalTextEntry(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// ListEntries returns the whole text index keyed by OGRN.
func (r *TextIndexRepository) ListEntries(ctx context.Context) (map[string]*core.TextEntry, error) {
	results := make(map[string]*core.TextEntry)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(textEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			ogrn := strings.TrimPrefix(string(item.Key()), textEntryPrefix+":")

			err := item.Value(func(val []byte) error {
				entry, unmarshalErr := storage.UnmarshalTextEntry(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				results[ogrn] = entry
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}
