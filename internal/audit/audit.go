// Package audit keeps a copy of bulk-upload payloads on disk so imports can
// be inspected or replayed after the fact.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Auditor struct {
	AuditDir string
}

// NewAuditor returns an Auditor writing to auditDir, or nil when auditDir is
// empty. A nil *Auditor is valid and saves nothing.
func NewAuditor(auditDir string) *Auditor {
	if auditDir == "" {
		return nil
	}
	return &Auditor{
		AuditDir: auditDir,
	}
}

// Record is the envelope written for every audited payload.
type Record struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ReceivedAt time.Time `json:"received_at"`
	Payload    any       `json:"payload"`
}

// Enabled reports whether payloads are being saved.
func (a *Auditor) Enabled() bool {
	return a != nil && a.AuditDir != ""
}

// SaveJSON saves data wrapped in a Record to a file named after a fresh UUID.
// It returns the file name, or "" when auditing is disabled.
func (a *Auditor) SaveJSON(kind string, data any) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	record := Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		ReceivedAt: time.Now().UTC(),
		Payload:    data,
	}
	filename := record.ID + ".json"
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Saved %s audit file: %s", kind, path)
	return filename, nil
}

func (a *Auditor) ensureAuditDir() error {
	if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	return nil
}
