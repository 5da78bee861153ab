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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

const (
	// DefaultBatchSize is the number of organizations written per transaction
	// when no batch size is configured.
	DefaultBatchSize = 100

	// DefaultReportInterval is how often progress is reported (number of
	// organizations) when no interval is configured.
	DefaultReportInterval = 100
)

// Config holds configuration for a rebuild run.
type Config struct {
	// BatchSize is the number of organizations indexed per store write.
	BatchSize int

	// ReportInterval is how often to report progress (number of organizations).
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultReportInterval,
	}
}

// Stats summarizes one rebuild run.
type Stats struct {
	// Organizations is the number of detail records indexed.
	Organizations int

	// Projects is the total number of project texts derived.
	Projects int

	// RIDs is the total number of IP asset texts derived.
	RIDs int
}

// Indexer rebuilds the text index from every cached detail record.
type Indexer struct {
	details  storage.DetailRepository
	texts    storage.TextIndexRepository
	config   Config
	progress io.Writer
}

// NewIndexer creates a new indexer.
// progress: where to write progress output (typically os.Stderr)
func NewIndexer(details storage.DetailRepository, texts storage.TextIndexRepository, config *Config, progress io.Writer) *Indexer {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = DefaultReportInterval
	}

	return &Indexer{
		details:  details,
		texts:    texts,
		config:   cfg,
		progress: progress,
	}
}

// Run derives a text entry for every cached detail record and writes the
// entries through in batches. Context cancellation is checked between
// batches. Store errors are fatal: a rebuild that cannot read or write its
// own cache has nothing useful to continue with.
func (ix *Indexer) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	records, err := ix.details.ListDetails(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list cached details: %w", err)
	}

	total := len(records)
	if total == 0 {
		fmt.Fprintf(ix.progress, "No cached detail records found (0 organizations)\n")
		return stats, nil
	}

	fmt.Fprintf(ix.progress, "Rebuilding text index for %d organizations (batch size: %d)\n",
		total, ix.config.BatchSize)

	tracker := NewProgressTracker(ix.progress, total, ix.config.ReportInterval)

	for start := 0; start < total; start += ix.config.BatchSize {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		end := start + ix.config.BatchSize
		if end > total {
			end = total
		}

		entries := make(map[string]*core.TextEntry, end-start)
		for _, detail := range records[start:end] {
			entry := EntryOf(detail)
			entries[detail.OGRN] = entry
			stats.Projects += len(entry.Projects)
			stats.RIDs += len(entry.RIDs)
		}

		if err := ix.texts.PutEntries(ctx, entries); err != nil {
			return stats, fmt.Errorf("failed to store text entries: %w", err)
		}

		stats.Organizations = end
		tracker.Update(end)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(ix.progress, "Rebuild complete. Indexed %d organizations (%d project texts, %d IP texts) in %v\n",
		stats.Organizations, stats.Projects, stats.RIDs, elapsed.Round(time.Millisecond))

	return stats, nil
}
