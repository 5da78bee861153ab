// Package ingestion loads the published dataset into the session store.
//
// The Loader type manages the dataset lifecycle:
//   - Fetching the organization index and the flattened text index
//   - Detecting dataset updates through a content digest and resetting the
//     store when the published files change
//   - Fetching per-organization detail records on demand, store first
//   - Warming the detail cache concurrently with a worker pool
//
// Fetch failures during warming are logged but do not fail the warm-up; the
// detail in question simply stays uncached and is fetched again on demand.
package ingestion
