// Package memory implements an in-memory Repository, used as the test
// double for the conflict engine, sync coordinator, and fallback manager,
// grounded on the teacher's internal/storage/memory in-memory backend.
package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// Repository is a single process-wide in-memory store for all three entity
// kinds, isolated per userID. Safe for concurrent use.
type Repository struct {
	mu      sync.RWMutex
	notes   map[int64]*domain.Note
	folders map[int64]*domain.Folder
	reviews map[int64]*domain.Review
	nextID  map[domain.EntityKind]int64
	now     func() time.Time
}

// New creates an empty in-memory repository. nowFn defaults to time.Now and
// is overridable for deterministic tests.
func New(nowFn func() time.Time) *Repository {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Repository{
		notes:   make(map[int64]*domain.Note),
		folders: make(map[int64]*domain.Folder),
		reviews: make(map[int64]*domain.Review),
		nextID:  make(map[domain.EntityKind]int64),
		now:     nowFn,
	}
}

func (r *Repository) Notes() repository.Notes     { return notesView{r} }
func (r *Repository) Folders() repository.Folders { return foldersView{r} }
func (r *Repository) Reviews() repository.Reviews { return reviewsView{r} }

func (r *Repository) allocID(kind domain.EntityKind) int64 {
	r.nextID[kind]++
	return r.nextID[kind]
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func int64From(p domain.Payload, key string) (int64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func stringFrom(p domain.Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolFrom(p domain.Payload, key string) (bool, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// --- notes ---

type notesView struct{ r *Repository }

func (v notesView) Get(_ context.Context, userID, id int64) (*domain.Note, bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	n, ok := v.r.notes[id]
	if !ok || n.UserID != userID {
		return nil, false, nil
	}
	cp := *n
	return &cp, true, nil
}

func (v notesView) ListChangedSince(_ context.Context, userID int64, since time.Time) ([]*domain.Note, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	var out []*domain.Note
	for _, n := range v.r.notes {
		if n.UserID != userID {
			continue
		}
		if !n.UpdatedAt.Before(since) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (v notesView) Create(_ context.Context, userID int64, payload domain.Payload) (*domain.Note, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	var folderID *int64
	if fid, ok := int64From(payload, domain.FieldFolderID); ok {
		f, exists := v.r.folders[fid]
		if !exists || f.UserID != userID || f.IsTombstone() {
			return nil, fmt.Errorf("note folder %d: %w", fid, domain.ErrInvariantViolation)
		}
		folderID = &fid
	}
	title, _ := stringFrom(payload, domain.FieldTitle)
	content, _ := stringFrom(payload, domain.FieldContent)
	pinned, _ := boolFrom(payload, domain.FieldPinned)

	now := v.r.now()
	id := v.r.allocID(domain.KindNote)
	n := &domain.Note{
		Envelope: domain.Envelope{ID: id, UserID: userID, Version: 1, CreatedAt: now, UpdatedAt: now},
		Title:    title, Content: content, FolderID: folderID, Pinned: pinned,
		ContentHash: contentHash(content),
	}
	v.r.notes[id] = n
	cp := *n
	return &cp, nil
}

func (v notesView) Update(_ context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Note, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	n, ok := v.r.notes[id]
	if !ok || n.UserID != userID {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && n.Version != *expectedVersion {
		return nil, fmt.Errorf("note %d at version %d, expected %d: %w", id, n.Version, *expectedVersion, domain.ErrVersionMismatch)
	}

	contentChanged := false
	if title, ok := stringFrom(changes, domain.FieldTitle); ok {
		n.Title = title
	}
	if content, ok := stringFrom(changes, domain.FieldContent); ok {
		n.Content = content
		contentChanged = true
	}
	if pinned, ok := boolFrom(changes, domain.FieldPinned); ok {
		n.Pinned = pinned
	}
	if raw, present := changes[domain.FieldFolderID]; present {
		if raw == nil {
			n.FolderID = nil
		} else if fid, ok := int64From(changes, domain.FieldFolderID); ok {
			n.FolderID = &fid
		}
	}
	if contentChanged {
		n.ContentHash = contentHash(n.Content)
	}
	n.Version++
	n.UpdatedAt = v.r.now()
	cp := *n
	return &cp, nil
}

func (v notesView) SoftDelete(_ context.Context, userID, id int64) (*domain.Note, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	n, ok := v.r.notes[id]
	if !ok || n.UserID != userID {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	now := v.r.now()
	n.DeletedAt = &now
	n.Version++
	n.UpdatedAt = now
	cp := *n
	return &cp, nil
}

func (v notesView) Exists(_ context.Context, userID, id int64) (bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	n, ok := v.r.notes[id]
	return ok && n.UserID == userID && !n.IsTombstone(), nil
}

// --- folders ---

type foldersView struct{ r *Repository }

func (v foldersView) Get(_ context.Context, userID, id int64) (*domain.Folder, bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	f, ok := v.r.folders[id]
	if !ok || f.UserID != userID {
		return nil, false, nil
	}
	cp := *f
	return &cp, true, nil
}

func (v foldersView) ListChangedSince(_ context.Context, userID int64, since time.Time) ([]*domain.Folder, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	var out []*domain.Folder
	for _, f := range v.r.folders {
		if f.UserID != userID {
			continue
		}
		if !f.UpdatedAt.Before(since) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (v foldersView) Create(_ context.Context, userID int64, payload domain.Payload) (*domain.Folder, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	var parentID *int64
	if pid, ok := int64From(payload, domain.FieldParentID); ok {
		p, exists := v.r.folders[pid]
		if !exists || p.UserID != userID || p.IsTombstone() {
			return nil, fmt.Errorf("folder parent %d: %w", pid, domain.ErrInvariantViolation)
		}
		parentID = &pid
	}
	name, _ := stringFrom(payload, domain.FieldName)

	now := v.r.now()
	id := v.r.allocID(domain.KindFolder)
	f := &domain.Folder{
		Envelope: domain.Envelope{ID: id, UserID: userID, Version: 1, CreatedAt: now, UpdatedAt: now},
		Name:     name, ParentID: parentID,
	}
	v.r.folders[id] = f
	cp := *f
	return &cp, nil
}

func (v foldersView) Update(_ context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Folder, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	f, ok := v.r.folders[id]
	if !ok || f.UserID != userID {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && f.Version != *expectedVersion {
		return nil, fmt.Errorf("folder %d at version %d, expected %d: %w", id, f.Version, *expectedVersion, domain.ErrVersionMismatch)
	}
	if name, ok := stringFrom(changes, domain.FieldName); ok {
		f.Name = name
	}
	if raw, present := changes[domain.FieldParentID]; present {
		if raw == nil {
			f.ParentID = nil
		} else if pid, ok := int64From(changes, domain.FieldParentID); ok {
			f.ParentID = &pid
		}
	}
	f.Version++
	f.UpdatedAt = v.r.now()
	cp := *f
	return &cp, nil
}

func (v foldersView) SoftDelete(_ context.Context, userID, id int64) (*domain.Folder, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	f, ok := v.r.folders[id]
	if !ok || f.UserID != userID {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	now := v.r.now()
	f.DeletedAt = &now
	f.Version++
	f.UpdatedAt = now
	cp := *f
	return &cp, nil
}

func (v foldersView) Exists(_ context.Context, userID, id int64) (bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	f, ok := v.r.folders[id]
	return ok && f.UserID == userID && !f.IsTombstone(), nil
}

// --- reviews ---

type reviewsView struct{ r *Repository }

func (v reviewsView) Get(_ context.Context, userID, id int64) (*domain.Review, bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	rv, ok := v.r.reviews[id]
	if !ok || rv.UserID != userID {
		return nil, false, nil
	}
	cp := *rv
	return &cp, true, nil
}

func (v reviewsView) ListChangedSince(_ context.Context, userID int64, since time.Time) ([]*domain.Review, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	var out []*domain.Review
	for _, rv := range v.r.reviews {
		if rv.UserID != userID {
			continue
		}
		if !rv.UpdatedAt.Before(since) {
			cp := *rv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (v reviewsView) Create(_ context.Context, userID int64, payload domain.Payload) (*domain.Review, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	content, _ := stringFrom(payload, domain.FieldContent)
	mood, _ := stringFrom(payload, "mood")
	now := v.r.now()
	id := v.r.allocID(domain.KindReview)
	rv := &domain.Review{
		Envelope: domain.Envelope{ID: id, UserID: userID, Version: 1, CreatedAt: now, UpdatedAt: now},
		Date:     now, Content: content, Mood: mood,
		Achievements: stringSlice(payload["achievements"]),
		Improvements: stringSlice(payload["improvements"]),
		Plans:        stringSlice(payload["plans"]),
	}
	v.r.reviews[id] = rv
	cp := *rv
	return &cp, nil
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (v reviewsView) Update(_ context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Review, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()

	rv, ok := v.r.reviews[id]
	if !ok || rv.UserID != userID {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && rv.Version != *expectedVersion {
		return nil, fmt.Errorf("review %d at version %d, expected %d: %w", id, rv.Version, *expectedVersion, domain.ErrVersionMismatch)
	}
	if content, ok := stringFrom(changes, domain.FieldContent); ok {
		rv.Content = content
	}
	if mood, ok := stringFrom(changes, "mood"); ok {
		rv.Mood = mood
	}
	if raw, present := changes["achievements"]; present {
		rv.Achievements = stringSlice(raw)
	}
	if raw, present := changes["improvements"]; present {
		rv.Improvements = stringSlice(raw)
	}
	if raw, present := changes["plans"]; present {
		rv.Plans = stringSlice(raw)
	}
	rv.Version++
	rv.UpdatedAt = v.r.now()
	cp := *rv
	return &cp, nil
}

func (v reviewsView) SoftDelete(_ context.Context, userID, id int64) (*domain.Review, error) {
	v.r.mu.Lock()
	defer v.r.mu.Unlock()
	rv, ok := v.r.reviews[id]
	if !ok || rv.UserID != userID {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	now := v.r.now()
	rv.DeletedAt = &now
	rv.Version++
	rv.UpdatedAt = now
	cp := *rv
	return &cp, nil
}

func (v reviewsView) Exists(_ context.Context, userID, id int64) (bool, error) {
	v.r.mu.RLock()
	defer v.r.mu.RUnlock()
	rv, ok := v.r.reviews[id]
	return ok && rv.UserID == userID && !rv.IsTombstone(), nil
}
