package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

// DetailRepository implements storage.DetailRepository for BadgerDB.
// Details are written as organizations are opened and stay cached until the
// snapshot is reset; there is no eviction.
type DetailRepository struct {
	backend *Backend
}

var _ storage.DetailRepository = (*DetailRepository)(nil)

// NewDetailRepository creates a new DetailRepository.
func NewDetailRepository(backend *Backend) *DetailRepository {
	return &DetailRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *DetailRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DetailRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutDetail stores a full per-organization record.
func (r *DetailRepository) PutDetail(ctx context.Context, detail *core.OrganizationDetail) error {
	value, err := storage.MarshalDetail(detail)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeDetailKey(detail.OGRN), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDetail retrieves a cached record by OGRN.
func (r *DetailRepository) GetDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	var result *core.OrganizationDetail
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDetailKey(ogrn))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalDetail(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// HasDetail reports whether a record is cached, without decoding it.
func (r *DetailRepository) HasDetail(ctx context.Context, ogrn string) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeDetailKey(ogrn))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// ListDetails returns all cached records. Keys are iterated in lexicographic
// order, so results come back sorted by OGRN.
func (r *DetailRepository) ListDetails(ctx context.Context) ([]*core.OrganizationDetail, error) {
	var results []*core.OrganizationDetail
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(detailPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				detail, unmarshalErr := storage.UnmarshalDetail(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				results = append(results, detail)
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
