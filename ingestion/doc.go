// Package ingestion loads corpus documents from JSONL files, embeds
// their contents in batches across a worker pool, and bulk indexes them
// into the search backend.
package ingestion
