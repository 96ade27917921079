// Package extract walks one ClickUp space and turns its open tasks into flat
// records.
//
// Extractor.Run resolves the workspace and space by name, gathers every
// folder list and folderless list, fetches and filters each list's tasks,
// maps custom fields onto record columns and, when a Summarizer is
// configured, fills each record's notes through the worker pool. The
// records are then written to a Sink, by default as JSON lines.
//
// Per-list failures are logged and the list is skipped. Authentication and
// shard-routing failures abort the run, since every later call would fail
// the same way.
package extract
