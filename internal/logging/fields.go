// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldSession    = "session"
	FieldAddr       = "addr"
	FieldOp         = "op"
	FieldPolling    = "polling"

	// Engine fields.
	FieldWorker     = "worker"
	FieldLanguage   = "language"
	FieldStrategy   = "strategy"
	FieldGeneration = "generation"
	FieldState      = "state"
	FieldDuration   = "duration"
	FieldOutcome    = "outcome"
	FieldPanic      = "panic"

	// Result fields.
	FieldLines  = "lines"
	FieldSpans  = "spans"
	FieldBlocks = "blocks"
	FieldLabels = "labels"

	// Configuration fields.
	FieldFormat = "format"
	FieldJobs   = "jobs"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesAnalyzed   = "files_analyzed"
	FieldFilesErrored    = "files_errored"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Language listing fields.
	FieldName       = "name"
	FieldExtensions = "extensions"
)
