package template

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/core/domain"
)

// ================================================================================
// TN-155: Template Repository - CRUD Operations
// ================================================================================
// Implementation of CRUD operations for template persistence.
//
// Performance Targets:
// - Create: < 50ms p95
// - Get: < 100ms p95 (uncached)
// - Update: < 75ms p95
// - Delete: < 50ms p95
//
// Quality Target: 150% (Grade A+ EXCEPTIONAL)

// Create creates a new template
// Returns ErrTemplateExists if name already exists
func (r *DefaultTemplateRepository) Create(ctx context.Context, template *domain.Template) error {
	start := time.Now()
	defer func() {
		r.logger.Debug("template create operation",
			"template_name", template.Name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	// Check if template with this name already exists
	exists, err := r.Exists(ctx, template.Name)
	if err != nil {
		return fmt.Errorf("failed to check template existence: %w", err)
	}
	if exists {
		return ErrTemplateExists
	}

	// Serialize metadata to JSON
	metadataJSON, err := json.Marshal(template.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	// Begin transaction
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Set timestamps if not set
	now := time.Now()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}
	if template.UpdatedAt.IsZero() {
		template.UpdatedAt = now
	}
	if template.Version == 0 {
		template.Version = 1
	}

	// Insert template
	query := `
		INSERT INTO templates (
			id, name, type, content, description, metadata,
			version, created_at, updated_at, created_by, updated_by
		) VALUES (
			gen_random_uuid(), $1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
		RETURNING id
	`

	row := tx.QueryRow(ctx, query,
		template.Name,
		template.Type,
		template.Content,
		template.Description,
		metadataJSON,
		template.Version,
		template.CreatedAt,
		template.UpdatedAt,
		template.CreatedBy,
		template.UpdatedBy,
	)

	if err := row.Scan(&template.ID); err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	// Create initial version
	versionQuery := `
		INSERT INTO template_versions (
			template_id, version, content, description, metadata,
			created_at, created_by, change_summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, versionQuery,
		template.ID,
		template.Version,
		template.Content,
		template.Description,
		metadataJSON,
		template.CreatedAt,
		template.CreatedBy,
		"Initial version",
	)
	if err != nil {
		return fmt.Errorf("failed to create initial version: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("template created",
		"template_id", template.ID,
		"template_name", template.Name,
		"template_type", template.Type,
		"version", template.Version,
	)

	return nil
}

// ================================================================================

// GetByName retrieves a template by name
// Returns ErrTemplateNotFound if not found
func (r *DefaultTemplateRepository) GetByName(ctx context.Context, name string) (*domain.Template, error) {
	start := time.Now()
	defer func() {
		r.logger.Debug("template get by name operation",
			"template_name", name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	query := `
		SELECT id, name, type, content, description, metadata,
		       version, created_at, updated_at, created_by, updated_by, deleted_at
		FROM templates
		WHERE name = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRow(ctx, query, name)
	template, err := scanTemplate(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template, nil
}

// ================================================================================

// GetByID retrieves a template by ID
// Returns ErrTemplateNotFound if not found
func (r *DefaultTemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	start := time.Now()
	defer func() {
		r.logger.Debug("template get by id operation",
			"template_id", id,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	query := `
		SELECT id, name, type, content, description, metadata,
		       version, created_at, updated_at, created_by, updated_by, deleted_at
		FROM templates
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRow(ctx, query, id)
	template, err := scanTemplate(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template, nil
}

// ================================================================================

// List retrieves templates with filtering and pagination
// Returns templates, total count, and error
func (r *DefaultTemplateRepository) List(ctx context.Context, filters domain.ListFilters) ([]*domain.Template, int, error) {
	start := time.Now()
	defer func() {
		r.logger.Debug("template list operation",
			"filters", filters,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	// Build WHERE clause
	whereClause := "WHERE deleted_at IS NULL"
	args := []interface{}{}
	argIndex := 1

	// Filter by type
	if filters.Type != "" {
		whereClause += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, filters.Type)
		argIndex++
	}

	// Filter by tag (metadata JSONB query)
	if filters.Tag != "" {
		whereClause += fmt.Sprintf(" AND metadata @> $%d", argIndex)
		tagJSON := fmt.Sprintf(`{"tags": ["%s"]}`, filters.Tag)
		args = append(args, tagJSON)
		argIndex++
	}

	// Full-text search
	if filters.Search != "" {
		whereClause += fmt.Sprintf(
			" AND to_tsvector('english', name || ' ' || coalesce(description, '')) @@ plainto_tsquery('english', $%d)",
			argIndex,
		)
		args = append(args, filters.Search)
		argIndex++
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM templates %s", whereClause)
	var total int
	row := r.db.QueryRow(ctx, countQuery, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count templates: %w", err)
	}

	// Build ORDER BY clause
	orderBy := "ORDER BY name ASC"
	if filters.Sort != "" {
		direction := "ASC"
		if filters.Order == "desc" {
			direction = "DESC"
		}
		orderBy = fmt.Sprintf("ORDER BY %s %s", filters.Sort, direction)
	}

	// Build main query
	query := fmt.Sprintf(`
		SELECT id, name, type, content, description, metadata,
		       version, created_at, updated_at, created_by, updated_by, deleted_at
		FROM templates
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	// Execute query
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	// Scan results
	templates := make([]*domain.Template, 0, filters.Limit)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	r.logger.Info("templates listed",
		"count", len(templates),
		"total", total,
		"limit", filters.Limit,
		"offset", filters.Offset,
	)

	return templates, total, nil
}

// ================================================================================

// Update updates an existing template
// Creates a new version in template_versions table
// Returns ErrTemplateNotFound if template doesn't exist
func (r *DefaultTemplateRepository) Update(ctx context.Context, template *domain.Template) error {
	start := time.Now()
	defer func() {
		r.logger.Debug("template update operation",
			"template_id", template.ID,
			"template_name", template.Name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	// Get current template to create version snapshot
	current, err := r.GetByID(ctx, template.ID)
	if err != nil {
		return err
	}

	// Serialize metadata
	metadataJSON, err := json.Marshal(template.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	// Begin transaction
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Increment version
	template.Version = current.Version + 1
	template.UpdatedAt = time.Now()

	// Update template
	query := `
		UPDATE templates
		SET content = $1,
		    description = $2,
		    metadata = $3,
		    version = $4,
		    updated_at = $5,
		    updated_by = $6
		WHERE id = $7 AND deleted_at IS NULL
	`

	result, err := tx.Exec(ctx, query,
		template.Content,
		template.Description,
		metadataJSON,
		template.Version,
		template.UpdatedAt,
		template.UpdatedBy,
		template.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}

	// Create version snapshot (old content)
	currentMetadataJSON, _ := json.Marshal(current.Metadata)
	versionQuery := `
		INSERT INTO template_versions (
			template_id, version, content, description, metadata,
			created_at, created_by, change_summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, versionQuery,
		current.ID,
		current.Version,
		current.Content,
		current.Description,
		currentMetadataJSON,
		current.UpdatedAt,
		current.UpdatedBy,
		fmt.Sprintf("Updated to version %d", template.Version),
	)
	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("template updated",
		"template_id", template.ID,
		"template_name", template.Name,
		"old_version", current.Version,
		"new_version", template.Version,
	)

	return nil
}

// ================================================================================

// Delete deletes a template (soft or hard delete)
// Soft delete: sets deleted_at timestamp
// Hard delete: physically removes from database
// Returns ErrTemplateNotFound if template doesn't exist
func (r *DefaultTemplateRepository) Delete(ctx context.Context, name string, soft bool) error {
	start := time.Now()
	defer func() {
		r.logger.Debug("template delete operation",
			"template_name", name,
			"soft", soft,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if soft {
		// Soft delete - set deleted_at
		query := `
			UPDATE templates
			SET deleted_at = $1
			WHERE name = $2 AND deleted_at IS NULL
		`

		result, err := r.db.Exec(ctx, query, time.Now(), name)
		if err != nil {
			return fmt.Errorf("failed to soft delete template: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrTemplateNotFound
		}

		r.logger.Info("template soft deleted",
			"template_name", name,
		)
	} else {
		// Hard delete - physically remove
		// Versions will be cascaded deleted due to ON DELETE CASCADE
		query := `
			DELETE FROM templates
			WHERE name = $1
		`

		result, err := r.db.Exec(ctx, query, name)
		if err != nil {
			return fmt.Errorf("failed to hard delete template: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return ErrTemplateNotFound
		}

		r.logger.Info("template hard deleted",
			"template_name", name,
		)
	}

	return nil
}

// ================================================================================

// Exists checks if template with given name exists
func (r *DefaultTemplateRepository) Exists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM templates WHERE name = $1 AND deleted_at IS NULL)`

	var exists bool
	row := r.db.QueryRow(ctx, query, name)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check template existence: %w", err)
	}

	return exists, nil
}

// ================================================================================
