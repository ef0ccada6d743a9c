// Package seqindex provides a persistent map from a 64-bit FIX session
// identifier to the last observed 32-bit sequence number, durable across
// crashes without a database.
//
// The package is organised into several files for clarity:
//
//	layout.go          – on-disk/in-memory geometry constants and offsets
//	header.go           – file-level schema header (schema id/template/version)
//	sector.go           – sector framing and CRC-32 checksum trailers
//	atomic.go            – release-store / acquire-load helpers on mapped bytes
//	record.go            – session_id -> sequence_number table
//	position.go          – transport_session_id -> last archival position table
//	mappedfile*.go       – platform mmap wrappers (unix / windows)
//	filemanager.go       – the three-file passing-place rename dance
//	config.go            – sidecar layout guard, persisted across opens
//	wire.go              – decoded-message contracts consumed on the ingest path
//	options.go           – IndexOptions and defaults
//	writer.go            – the single-writer engine (OnFragment/DoWork/Close)
//	reader.go            – read-only snapshot access
//	errors.go            – typed error kinds routed through ErrorHandler
//	clock.go, log.go     – injected clock and the zap-backed structured-logging sink
package seqindex
