package transform

import "github.com/google/uuid"

// Content is the tagged union of input shapes handed over by the upstream
// extraction layer. Exactly one shape is expected to be populated; the
// engine picks the first non-empty one and an unrecognized shape yields
// zero records rather than an error.
type Content struct {
	Rows           []map[string]any // tabular sources (csv, spreadsheets)
	Text           string           // free text (pdf extraction)
	StructuredData []map[string]any // rows recovered from free text
	Lines          []string         // line-oriented text (txt reports)
}

// RawFile is one logical input document with its property attribution.
type RawFile struct {
	PropertyID   int
	PropertyName string
	FileType     string // pdf, csv or txt
	Content      Content
}

// RecordMeta carries per-record provenance and advisory warnings.
type RecordMeta struct {
	SourceRowIndex int
	Warnings       []string
	SourceRow      map[string]any // populated only with debug info enabled
}

// Record is one transformed output row. Immutable once emitted.
type Record struct {
	Fields map[string]any
	Meta   RecordMeta
}

// ResultMeta summarizes a transformation run.
type ResultMeta struct {
	RunID          uuid.UUID
	RecordCount    int
	SourceFileType string
	Errors         []Error
	Warnings       []string
}

// Result is the output of transforming one RawFile.
type Result struct {
	PropertyID   int
	PropertyName string
	Records      []Record
	Meta         ResultMeta
}
