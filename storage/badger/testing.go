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

import "github.com/ionplatox-blip/rnd-map-moscow-2025/storage"

// NewMemoryRepositories creates in-memory repositories for testing.
// Returns organization, detail, text index and snapshot repositories plus the
// shared backend. Caller must close the backend when done.
func NewMemoryRepositories() (storage.OrganizationRepository, storage.DetailRepository, storage.TextIndexRepository, storage.SnapshotRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	orgs := NewOrganizationRepository(backend)
	details := NewDetailRepository(backend)
	texts := NewTextIndexRepository(backend)
	snapshots := NewSnapshotRepository(backend)

	return orgs, details, texts, snapshots, backend, nil
}
