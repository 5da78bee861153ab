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


// Package storage provides the storage abstraction layer for the R&D map
// session store.
//
// This package defines repository interfaces that decouple storage
// implementation from the search and session logic. It allows different
// storage backends (BadgerDB on disk, BadgerDB in memory) to be used
// interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction and lifecycle operations shared by all repositories
//   - OrganizationRepository: summary records of the map index, in dataset order
//   - DetailRepository: cache of full per-organization records
//   - TextIndexRepository: flattened searchable text per organization
//   - SnapshotRepository: digest of the dataset revision the cache was built from
//
// Consumers hold these interfaces; the badger sub-package provides the
// implementations, all sharing one Backend so the snapshot digest, the
// records and the text entries live in a single transactional store.
//
// # Usage
//
// Open a backend and build the repositories on it:
//
//	backend, err := badger.OpenBackend("/path/to/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	orgs := badger.NewOrganizationRepository(backend)
//	details := badger.NewDetailRepository(backend)
//
// Use in tests with in-memory storage:
//
//	orgs, details, texts, snapshots, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
