// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(backend *Backend) *SnapshotRepository {
	return &SnapshotRepository{
		backend: backend,
	}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *SnapshotRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SnapshotRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutSnapshot records the digest of the active dataset snapshot.
func (r *SnapshotRepository) PutSnapshot(ctx context.Context, digest uint64) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSnapshotKey(), storage.MarshalSnapshot(digest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSnapshot returns the stored digest, or ErrNotFound if none is recorded.
func (r *SnapshotRepository) GetSnapshot(ctx context.Context) (uint64, error) {
	var digest uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			digest, unmarshalErr = storage.UnmarshalSnapshot(val)
			return unmarshalErr
		})
	}, false)
	return digest, err
}

// Reset drops all cached data. Summary records, details and text entries
// written under the previous snapshot go with it.
func (r *SnapshotRepository) Reset(ctx context.Context) error {
	return r.backend.DropAll()
}
