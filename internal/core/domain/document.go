package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is the processed-file record. The raw bytes live in object
// storage under StoragePath; everything here is metadata plus pipeline
// outcome. Only the orchestrator writes status and result columns.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	SizeBytes   int64          `json:"size_bytes"`
	StoragePath string         `json:"storage_path"`
	Format      Format         `json:"format,omitempty"`
	Intent      Intent         `json:"intent,omitempty"`
	Confidence  float64        `json:"confidence,omitempty"`
	Priority    Priority       `json:"priority,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	Flags       []string       `json:"flags,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Extension returns the lower-cased filename extension including the dot,
// or "" when the filename has none.
func (d *Document) Extension() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}
