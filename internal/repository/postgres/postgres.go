// Package postgres implements repository.Repository on top of a pgx/v5
// connection pool, grounded on the teacher's internal/storage/sqlite
// adapter pattern (same query shapes, ported to the standard deployment
// profile's Postgres backend) plus its internal/infrastructure/template
// LRU-cache pattern, reused here to cache folder-existence lookups that
// the conflict engine's parent-integrity check would otherwise repeat on
// every note or folder write.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noteflow/syncserver/internal/domain"
	"github.com/noteflow/syncserver/internal/repository"
)

// Repository is a Postgres-backed repository.Repository.
type Repository struct {
	pool        *pgxpool.Pool
	idSeq       atomic.Int64
	folderCache *lru.Cache[string, bool]
}

// New wraps an already-connected pool. See internal/database/postgres for
// pool construction from config.DatabaseConfig.
func New(pool *pgxpool.Pool) (*Repository, error) {
	cache, err := lru.New[string, bool](2048)
	if err != nil {
		return nil, fmt.Errorf("creating folder existence cache: %w", err)
	}
	return &Repository{pool: pool, folderCache: cache}, nil
}

func (r *Repository) Notes() repository.Notes     { return notesView{r} }
func (r *Repository) Folders() repository.Folders { return foldersView{r} }
func (r *Repository) Reviews() repository.Reviews { return reviewsView{r} }

// nextID allocates a roughly time-ordered, process-unique identifier. A
// database sequence would also work but would tie the schema to Postgres,
// where the sibling SQLite backend needs portable DDL.
func (r *Repository) nextID() int64 {
	seq := r.idSeq.Add(1) % 1_000_000
	return time.Now().UnixMicro()*1_000_000 + seq
}

func folderCacheKey(userID, id int64) string {
	return fmt.Sprintf("%d:%d", userID, id)
}

// --- notes ---

type notesView struct{ r *Repository }

const noteColumns = `id, user_id, version, created_at, updated_at, deleted_at, title, content, folder_id, pinned, content_hash`

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Version, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt,
		&n.Title, &n.Content, &n.FolderID, &n.Pinned, &n.ContentHash); err != nil {
		return nil, err
	}
	return &n, nil
}

func (v notesView) Get(ctx context.Context, userID, id int64) (*domain.Note, bool, error) {
	row := v.r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id=$1 AND user_id=$2`, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, true, nil
}

func (v notesView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Note, error) {
	rows, err := v.r.pool.Query(ctx, `SELECT `+noteColumns+` FROM notes WHERE user_id=$1 AND updated_at >= $2 ORDER BY updated_at ASC`, userID, since)
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
		ok, err := v.r.Folders().Exists(ctx, userID, fid)
		if err != nil {
			return nil, fmt.Errorf("checking note folder %d: %w", fid, err)
		}
		if !ok {
			return nil, fmt.Errorf("note folder %d: %w", fid, domain.ErrInvariantViolation)
		}
		folderID = &fid
	}
	title, _ := stringFrom(payload, domain.FieldTitle)
	content, _ := stringFrom(payload, domain.FieldContent)
	pinned, _ := boolFrom(payload, domain.FieldPinned)

	id := v.r.nextID()
	row := v.r.pool.QueryRow(ctx, `
INSERT INTO notes (id, user_id, version, created_at, updated_at, title, content, folder_id, pinned, content_hash)
VALUES ($1, $2, 1, now(), now(), $3, $4, $5, $6, $7)
RETURNING `+noteColumns,
		id, userID, title, content, folderID, pinned, contentHash(content))
	n, err := scanNote(row)
	if err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
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

	row := v.r.pool.QueryRow(ctx, `
UPDATE notes SET title=$1, content=$2, folder_id=$3, pinned=$4, content_hash=$5, version=version+1, updated_at=now()
WHERE id=$6 AND user_id=$7 AND version=$8
RETURNING `+noteColumns,
		title, content, folderID, pinned, hash, id, userID, existing.Version)
	n, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("note %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("updating note %d: %w", id, err)
	}
	return n, nil
}

func (v notesView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Note, error) {
	row := v.r.pool.QueryRow(ctx, `
UPDATE notes SET deleted_at=now(), version=version+1, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING `+noteColumns, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("deleting note %d: %w", id, err)
	}
	return n, nil
}

func (v notesView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	var one int
	err := v.r.pool.QueryRow(ctx, `SELECT 1 FROM notes WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
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

func scanFolder(row pgx.Row) (*domain.Folder, error) {
	var f domain.Folder
	if err := row.Scan(&f.ID, &f.UserID, &f.Version, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt, &f.Name, &f.ParentID); err != nil {
		return nil, err
	}
	return &f, nil
}

func (v foldersView) Get(ctx context.Context, userID, id int64) (*domain.Folder, bool, error) {
	row := v.r.pool.QueryRow(ctx, `SELECT `+folderColumns+` FROM folders WHERE id=$1 AND user_id=$2`, id, userID)
	f, err := scanFolder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get folder %d: %w", id, err)
	}
	return f, true, nil
}

func (v foldersView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Folder, error) {
	rows, err := v.r.pool.Query(ctx, `SELECT `+folderColumns+` FROM folders WHERE user_id=$1 AND updated_at >= $2 ORDER BY updated_at ASC`, userID, since)
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
		ok, err := v.Exists(ctx, userID, pid)
		if err != nil {
			return nil, fmt.Errorf("checking folder parent %d: %w", pid, err)
		}
		if !ok {
			return nil, fmt.Errorf("folder parent %d: %w", pid, domain.ErrInvariantViolation)
		}
		parentID = &pid
	}
	name, _ := stringFrom(payload, domain.FieldName)

	id := v.r.nextID()
	row := v.r.pool.QueryRow(ctx, `
INSERT INTO folders (id, user_id, version, created_at, updated_at, name, parent_id)
VALUES ($1, $2, 1, now(), now(), $3, $4)
RETURNING `+folderColumns, id, userID, name, parentID)
	f, err := scanFolder(row)
	if err != nil {
		return nil, fmt.Errorf("creating folder: %w", err)
	}
	v.r.folderCache.Add(folderCacheKey(userID, id), true)
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

	row := v.r.pool.QueryRow(ctx, `
UPDATE folders SET name=$1, parent_id=$2, version=version+1, updated_at=now()
WHERE id=$3 AND user_id=$4 AND version=$5
RETURNING `+folderColumns, name, parentID, id, userID, existing.Version)
	f, err := scanFolder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("folder %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("updating folder %d: %w", id, err)
	}
	return f, nil
}

func (v foldersView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Folder, error) {
	row := v.r.pool.QueryRow(ctx, `
UPDATE folders SET deleted_at=now(), version=version+1, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING `+folderColumns, id, userID)
	f, err := scanFolder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("deleting folder %d: %w", id, err)
	}
	v.r.folderCache.Remove(folderCacheKey(userID, id))
	return f, nil
}

func (v foldersView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	key := folderCacheKey(userID, id)
	if cached, ok := v.r.folderCache.Get(key); ok {
		return cached, nil
	}
	var one int
	err := v.r.pool.QueryRow(ctx, `SELECT 1 FROM folders WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		v.r.folderCache.Add(key, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking folder %d existence: %w", id, err)
	}
	v.r.folderCache.Add(key, true)
	return true, nil
}

// --- reviews ---

type reviewsView struct{ r *Repository }

const reviewColumns = `id, user_id, version, created_at, updated_at, deleted_at, review_date, content, mood, achievements, improvements, plans`

func scanReview(row pgx.Row) (*domain.Review, error) {
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

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func (v reviewsView) Get(ctx context.Context, userID, id int64) (*domain.Review, bool, error) {
	row := v.r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id=$1 AND user_id=$2`, id, userID)
	rv, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get review %d: %w", id, err)
	}
	return rv, true, nil
}

func (v reviewsView) ListChangedSince(ctx context.Context, userID int64, since time.Time) ([]*domain.Review, error) {
	rows, err := v.r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE user_id=$1 AND updated_at >= $2 ORDER BY updated_at ASC`, userID, since)
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
	row := v.r.pool.QueryRow(ctx, `
INSERT INTO reviews (id, user_id, version, created_at, updated_at, review_date, content, mood, achievements, improvements, plans)
VALUES ($1, $2, 1, now(), now(), now(), $3, $4, $5, $6, $7)
RETURNING `+reviewColumns,
		id, userID, content, mood,
		jsonList(stringSlice(payload["achievements"])),
		jsonList(stringSlice(payload["improvements"])),
		jsonList(stringSlice(payload["plans"])))
	rv, err := scanReview(row)
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
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

	row := v.r.pool.QueryRow(ctx, `
UPDATE reviews SET content=$1, mood=$2, achievements=$3, improvements=$4, plans=$5, version=version+1, updated_at=now()
WHERE id=$6 AND user_id=$7 AND version=$8
RETURNING `+reviewColumns,
		content, mood, jsonList(achievements), jsonList(improvements), jsonList(plans), id, userID, existing.Version)
	rv, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("review %d concurrently modified: %w", id, domain.ErrVersionMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("updating review %d: %w", id, err)
	}
	return rv, nil
}

func (v reviewsView) SoftDelete(ctx context.Context, userID, id int64) (*domain.Review, error) {
	row := v.r.pool.QueryRow(ctx, `
UPDATE reviews SET deleted_at=now(), version=version+1, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING `+reviewColumns, id, userID)
	rv, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("deleting review %d: %w", id, err)
	}
	return rv, nil
}

func (v reviewsView) Exists(ctx context.Context, userID, id int64) (bool, error) {
	var one int
	err := v.r.pool.QueryRow(ctx, `SELECT 1 FROM reviews WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking review %d existence: %w", id, err)
	}
	return true, nil
}
