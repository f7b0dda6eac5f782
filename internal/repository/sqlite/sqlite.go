// Package sqlite implements repository.Repository on top of the pure-Go
// modernc.org/sqlite driver, grounded on the teacher's
// internal/storage/sqlite.SQLiteStorage: WAL mode, foreign keys enabled,
// a bounded connection pool, and 0600 file permissions for the Lite
// deployment profile (single-node, no external database required).
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// Repository is a SQLite-backed repository.Repository.
type Repository struct {
	db    *sql.DB
	idSeq atomic.Int64
}

// Open creates (or reuses) a SQLite database file at path in WAL mode with
// foreign keys enabled, suitable for the Lite deployment profile.
func Open(ctx context.Context, path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("invalid sqlite path contains '..': %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := os.Chmod(path, 0600); err != nil {
		// Non-fatal: some filesystems (tmpfs in CI) reject chmod.
		_ = err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() error { return r.db.Close() }

// DB exposes the underlying handle so the migration runner can apply goose
// migrations against the same connection the repository uses.
func (r *Repository) DB() *sql.DB { return r.db }

func (r *Repository) Notes() repository.Notes     { return notesView{r} }
func (r *Repository) Folders() repository.Folders { return foldersView{r} }
func (r *Repository) Reviews() repository.Reviews { return reviewsView{r} }

func (r *Repository) nextID() int64 {
	seq := r.idSeq.Add(1) % 1_000_000
	return time.Now().UnixMicro()*1_000_000 + seq
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

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// --- notes ---

type notesView struct{ r *Repository }

const noteColumns = `id, user_id, version, created_at, updated_at, deleted_at, title, content, folder_id, pinned, content_hash`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Version, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt,
		&n.Title, &n.Content, &n.FolderID, &n.Pinned, &n.ContentHash); err != nil {
		return nil, err
	}
	return &n, nil
}

func (v notesView) Get(ctx context.Context, userID, id int64) (*domain.Note, bool, error) {
	row := v.r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id=? AND user_id=?`, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, true, nil
}

func (v notesView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Note, error) {
	rows, err := v.r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id=? AND updated_at >= ? ORDER BY updated_at ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing changed notes: %w", err)
	}
	defer rows.Close()
	var out []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (v notesView) Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Note, error) {
	var folderID *int64
	if fid, ok := int64From(payload, domain.FieldFolderID); ok {
		exists, err := v.r.Folders().Exists(ctx, userID, fid)
		if err != nil {
			return nil, fmt.Errorf("checking note folder %d: %w", fid, err)
		}
		if !exists {
			return nil, fmt.Errorf("note folder %d: %w", fid, domain.ErrInvariantViolation)
		}
		folderID = &fid
	}
	title, _ := stringFrom(payload, domain.FieldTitle)
	content, _ := stringFrom(payload, domain.FieldContent)
	pinned, _ := boolFrom(payload, domain.FieldPinned)

	id := v.r.nextID()
	now := time.Now()
	_, err := v.r.db.ExecContext(ctx, `
INSERT INTO notes (id, user_id, version, created_at, updated_at, title, content, folder_id, pinned, content_hash)
VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, now, now, title, content, folderID, pinned, contentHash(content))
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}
	n, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (v notesView) Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Note, error) {
	existing, ok, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && existing.Version != *expectedVersion {
		return nil, fmt.Errorf("note %d at version %d, expected %d: %w", id, existing.Version, *expectedVersion, domain.ErrVersionMismatch)
	}

	title := existing.Title
	if t, ok := stringFrom(changes, domain.FieldTitle); ok {
		title = t
	}
	content := existing.Content
	contentChanged := false
	if c, ok := stringFrom(changes, domain.FieldContent); ok {
		content = c
		contentChanged = true
	}
	pinned := existing.Pinned
	if p, ok := boolFrom(changes, domain.FieldPinned); ok {
		pinned = p
	}
	folderID := existing.FolderID
	if raw, present := changes[domain.FieldFolderID]; present {
		if raw == nil {
			folderID = nil
		} else if fid, ok := int64From(changes, domain.FieldFolderID); ok {
			folderID = &fid
		}
	}
	hash := existing.ContentHash
	if contentChanged {
		hash = contentHash(content)
	}

	res, err := v.r.db.ExecContext(ctx, `
UPDATE notes SET title=?, content=?, folder_id=?, pinned=?, content_hash=?, version=version+1, updated_at=?
WHERE id=? AND user_id=? AND version=?`,
		title, content, folderID, pinned, hash, time.Now(), id, userID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("updating note %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("note %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	updated, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (v notesView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Note, error) {
	res, err := v.r.db.ExecContext(ctx, `
UPDATE notes SET deleted_at=?, version=version+1, updated_at=?
WHERE id=? AND user_id=?`, time.Now(), time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting note %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	deleted, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (v notesView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	var one int
	err := v.r.db.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id=? AND user_id=? AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking note %d existence: %w", id, err)
	}
	return true, nil
}

// --- folders ---

type foldersView struct{ r *Repository }

const folderColumns = `id, user_id, version, created_at, updated_at, deleted_at, name, parent_id`

func scanFolder(row rowScanner) (*domain.Folder, error) {
	var f domain.Folder
	if err := row.Scan(&f.ID, &f.UserID, &f.Version, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt, &f.Name, &f.ParentID); err != nil {
		return nil, err
	}
	return &f, nil
}

func (v foldersView) Get(ctx context.Context, userID, id int64) (*domain.Folder, bool, error) {
	row := v.r.db.QueryRowContext(ctx, `SELECT `+folderColumns+` FROM folders WHERE id=? AND user_id=?`, id, userID)
	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get folder %d: %w", id, err)
	}
	return f, true, nil
}

func (v foldersView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Folder, error) {
	rows, err := v.r.db.QueryContext(ctx, `SELECT `+folderColumns+` FROM folders WHERE user_id=? AND updated_at >= ? ORDER BY updated_at ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing changed folders: %w", err)
	}
	defer rows.Close()
	var out []*domain.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning folder row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (v foldersView) Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Folder, error) {
	var parentID *int64
	if pid, ok := int64From(payload, domain.FieldParentID); ok {
		exists, err := v.Exists(ctx, userID, pid)
		if err != nil {
			return nil, fmt.Errorf("checking folder parent %d: %w", pid, err)
		}
		if !exists {
			return nil, fmt.Errorf("folder parent %d: %w", pid, domain.ErrInvariantViolation)
		}
		parentID = &pid
	}
	name, _ := stringFrom(payload, domain.FieldName)

	id := v.r.nextID()
	now := time.Now()
	_, err := v.r.db.ExecContext(ctx, `
INSERT INTO folders (id, user_id, version, created_at, updated_at, name, parent_id)
VALUES (?, ?, 1, ?, ?, ?, ?)`, id, userID, now, now, name, parentID)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}
	f, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (v foldersView) Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Folder, error) {
	existing, ok, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && existing.Version != *expectedVersion {
		return nil, fmt.Errorf("folder %d at version %d, expected %d: %w", id, existing.Version, *expectedVersion, domain.ErrVersionMismatch)
	}

	name := existing.Name
	if n, ok := stringFrom(changes, domain.FieldName); ok {
		name = n
	}
	parentID := existing.ParentID
	if raw, present := changes[domain.FieldParentID]; present {
		if raw == nil {
			parentID = nil
		} else if pid, ok := int64From(changes, domain.FieldParentID); ok {
			parentID = &pid
		}
	}

	res, err := v.r.db.ExecContext(ctx, `
UPDATE folders SET name=?, parent_id=?, version=version+1, updated_at=?
WHERE id=? AND user_id=? AND version=?`, name, parentID, time.Now(), id, userID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("updating folder %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("folder %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	updated, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (v foldersView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Folder, error) {
	res, err := v.r.db.ExecContext(ctx, `
UPDATE folders SET deleted_at=?, version=version+1, updated_at=?
WHERE id=? AND user_id=?`, time.Now(), time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting folder %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	deleted, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (v foldersView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	var one int
	err := v.r.db.QueryRowContext(ctx, `SELECT 1 FROM folders WHERE id=? AND user_id=? AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking folder %d existence: %w", id, err)
	}
	return true, nil
}

// --- reviews ---

type reviewsView struct{ r *Repository }

const reviewColumns = `id, user_id, version, created_at, updated_at, deleted_at, review_date, content, mood, achievements, improvements, plans`

func scanReview(row rowScanner) (*domain.Review, error) {
	var rv domain.Review
	var achievements, improvements, plans string
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.Version, &rv.CreatedAt, &rv.UpdatedAt, &rv.DeletedAt,
		&rv.Date, &rv.Content, &rv.Mood, &achievements, &improvements, &plans); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(achievements), &rv.Achievements)
	_ = json.Unmarshal([]byte(improvements), &rv.Improvements)
	_ = json.Unmarshal([]byte(plans), &rv.Plans)
	return &rv, nil
}

func (v reviewsView) Get(ctx context.Context, userID, id int64) (*domain.Review, bool, error) {
	row := v.r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id=? AND user_id=?`, id, userID)
	rv, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get review %d: %w", id, err)
	}
	return rv, true, nil
}

func (v reviewsView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Review, error) {
	rows, err := v.r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id=? AND updated_at >= ? ORDER BY updated_at ASC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing changed reviews: %w", err)
	}
	defer rows.Close()
	var out []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (v reviewsView) Create(ctx context.Context, userID int64, payload domain.Payload) (*domain.Review, error) {
	content, _ := stringFrom(payload, domain.FieldContent)
	mood, _ := stringFrom(payload, "mood")
	id := v.r.nextID()
	now := time.Now()
	_, err := v.r.db.ExecContext(ctx, `
INSERT INTO reviews (id, user_id, version, created_at, updated_at, review_date, content, mood, achievements, improvements, plans)
VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, now, now, now, content, mood,
		jsonList(stringSlice(payload["achievements"])),
		jsonList(stringSlice(payload["improvements"])),
		jsonList(stringSlice(payload["plans"])))
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}
	rv, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

func (v reviewsView) Update(ctx context.Context, userID, id int64, changes domain.Payload, expectedVersion *int64) (*domain.Review, error) {
	existing, ok, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	if expectedVersion != nil && existing.Version != *expectedVersion {
		return nil, fmt.Errorf("review %d at version %d, expected %d: %w", id, existing.Version, *expectedVersion, domain.ErrVersionMismatch)
	}

	content := existing.Content
	if c, ok := stringFrom(changes, domain.FieldContent); ok {
		content = c
	}
	mood := existing.Mood
	if m, ok := stringFrom(changes, "mood"); ok {
		mood = m
	}
	achievements := existing.Achievements
	if raw, present := changes["achievements"]; present {
		achievements = stringSlice(raw)
	}
	improvements := existing.Improvements
	if raw, present := changes["improvements"]; present {
		improvements = stringSlice(raw)
	}
	plans := existing.Plans
	if raw, present := changes["plans"]; present {
		plans = stringSlice(raw)
	}

	res, err := v.r.db.ExecContext(ctx, `
UPDATE reviews SET content=?, mood=?, achievements=?, improvements=?, plans=?, version=version+1, updated_at=?
WHERE id=? AND user_id=? AND version=?`,
		content, mood, jsonList(achievements), jsonList(improvements), jsonList(plans), time.Now(), id, userID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("updating review %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("review %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	updated, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (v reviewsView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Review, error) {
	res, err := v.r.db.ExecContext(ctx, `
UPDATE reviews SET deleted_at=?, version=version+1, updated_at=?
WHERE id=? AND user_id=?`, time.Now(), time.Now(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("deleting review %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	deleted, _, err := v.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (v reviewsView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	var one int
	err := v.r.db.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id=? AND user_id=? AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking review %d existence: %w", id, err)
	}
	return true, nil
}
