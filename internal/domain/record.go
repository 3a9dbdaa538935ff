package domain

import "time"

// Record is typed JSON data attached to an epic
type Record struct {
	CreatedAt time.Time
	Data      map[string]any
	EpicID    string
	ID        string
	Tags      []string
	Type      string
	UpdatedAt time.Time
	Version   int
}

// CreateRecordInput holds the fields accepted when creating a record
type CreateRecordInput struct {
	Data   map[string]any
	EpicID string
	Tags   []string
	Type   string
}

// RecordPatch lists the record fields to change
type RecordPatch struct {
	Data map[string]any
	Tags *[]string
	Type *string
}
