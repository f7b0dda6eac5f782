// Package domain defines the entity envelope, payload kinds, and the
// conflict/job/session/health records shared across the sync server.
package domain

import "time"

// EntityKind identifies one of the three synchronized data kinds.
type EntityKind string

const (
	KindNote   EntityKind = "note"
	KindFolder EntityKind = "folder"
	KindReview EntityKind = "review"
)

// Envelope carries the fields common to every entity kind.
type Envelope struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsTombstone reports whether the entity has been soft-deleted.
func (e Envelope) IsTombstone() bool {
	return e.DeletedAt != nil
}

// Note is the note-kind payload plus envelope.
type Note struct {
	Envelope
	Title       string `json:"title"`
	Content     string `json:"content"`
	FolderID    *int64 `json:"folderId,omitempty"`
	Pinned      bool   `json:"pinned"`
	ContentHash string `json:"contentHash"`
}

// Folder is the folder-kind payload plus envelope.
type Folder struct {
	Envelope
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
}

// Review is the periodic-review payload plus envelope.
type Review struct {
	Envelope
	Date         time.Time `json:"date"`
	Content      string    `json:"content"`
	Mood         string    `json:"mood"`
	Achievements []string  `json:"achievements"`
	Improvements []string  `json:"improvements"`
	Plans        []string  `json:"plans"`
}

// Payload is the generic, loosely-typed view of an entity used wherever the
// conflict engine and sync coordinator need to move entity data without
// caring which concrete kind it is. Ingress validation converts wire JSON
// into a Payload; the repository converts a Payload into a concrete struct
// and back.
type Payload map[string]interface{}

// Fields every entity-specific payload may carry, used for canonicalized
// field-diffing in the conflict engine (see internal/conflict/diff.go).
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldFolderID = "folderId"
	FieldParentID = "parentId"
	FieldPinned   = "pinned"
	FieldName     = "name"
)
