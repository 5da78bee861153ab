// Package reindex rebuilds the searchable text index from cached
// organization detail records.
//
// The published dataset ships a prebuilt text index, but a cache warmed
// before that index was published, or used offline, can lag behind the
// detail records it already holds. The Indexer walks the detail cache in
// batches and derives the same flattened per-project and per-IP-asset
// texts the published index carries.
package reindex
