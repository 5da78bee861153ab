package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

// OrganizationRepository implements storage.OrganizationRepository for BadgerDB.
//
// Besides the per-OGRN records it maintains a single order key listing OGRNs
// in the order they were first put. Badger iterates keys lexicographically,
// which would scramble the dataset order the scorer depends on.
type OrganizationRepository struct {
	backend *Backend
}

var _ storage.OrganizationRepository = (*OrganizationRepository)(nil)

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(backend *Backend) *OrganizationRepository {
	return &OrganizationRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *OrganizationRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *OrganizationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutOrganizations stores summary records, appending unseen OGRNs to the
// dataset-order list.
func (r *OrganizationRepository) PutOrganizations(ctx context.Context, orgs ...*core.Organization) error {
	if len(orgs) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		order, err := r.readOrder(tx)
		if err != nil {
			return err
		}

		known := make(map[string]struct{}, len(order))
		for _, ogrn := range order {
			known[ogrn] = struct{}{}
		}

		for _, org := range orgs {
			if err := tx.Set(makeOrganizationKey(org.OGRN), storage.MarshalOrganization(org)); err != nil {
				return err
			}
			if _, ok := known[org.OGRN]; !ok {
				known[org.OGRN] = struct{}{}
				order = append(order, org.OGRN)
			}
		}

		if err := tx.Set(makeOrganizationOrderKey(), storage.MarshalOGRNList(order)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetOrganization retrieves a single summary record by OGRN.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, ogrn string) (*core.Organization, error) {
	var result *core.Organization
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readOrganization(tx, makeOrganizationKey(ogrn))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListOrganizations returns all summary records in dataset order.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]*core.Organization, error) {
	var results []*core.Organization
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		order, err := r.readOrder(tx)
		if err != nil {
			return err
		}

		for _, ogrn := range order {
			org, err := r.readOrganization(tx, makeOrganizationKey(ogrn))
			if err != nil {
				return err
			}
			if org != nil {
				results = append(results, org)
			}
		}
		return nil
	}, false)
	return results, err
}

// CountOrganizations returns the number of stored summary records.
func (r *OrganizationRepository) CountOrganizations(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		order, err := r.readOrder(tx)
		if err != nil {
			return err
		}
		count = len(order)
		return nil
	}, false)
	return count, err
}

// readOrder reads the dataset-order OGRN list, or nil if none is stored yet.
func (r *OrganizationRepository) readOrder(tx *badger.Txn) ([]string, error) {
	item, err := tx.Get(makeOrganizationOrderKey())
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var order []string
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		order, unmarshalErr = storage.UnmarshalOGRNList(val)
		return unmarshalErr
	})
	return order, err
}

// readOrganization reads and unmarshals a record, or nil if the key is absent.
func (r *OrganizationRepository) readOrganization(tx *badger.Txn, key []byte) (*core.Organization, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var org *core.Organization
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		org, unmarshalErr = storage.UnmarshalOrganization(val)
		return unmarshalErr
	})
	return org, err
}
