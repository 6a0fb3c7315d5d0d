package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/models"
)

// ErrProjectNotFound is returned when no project has the requested ID
var ErrProjectNotFound = errors.New("project not found")

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db database.DBTX
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db database.DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ProjectRepository) WithTx(tx *sql.Tx) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

// Create inserts a project. CreatedAt/UpdatedAt are set here.
func (r *ProjectRepository) Create(p *models.Project) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO projects (id, name, owner, executor, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, p.ID, p.Name, p.Owner, p.Executor, now, now); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `
		SELECT id, name, owner, executor, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	p := &models.Project{}
	err := r.db.QueryRow(query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Owner,
		&p.Executor,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// List retrieves all projects, oldest first
func (r *ProjectRepository) List() ([]*models.Project, error) {
	query := `
		SELECT id, name, owner, executor, created_at, updated_at
		FROM projects
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Owner, &p.Executor, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// Update updates the descriptive fields of a project
func (r *ProjectRepository) Update(p *models.Project) error {
	now := time.Now().UTC()
	query := `
		UPDATE projects
		SET name = ?, owner = ?, executor = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, p.Name, p.Owner, p.Executor, now, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, p.ID)
	}

	p.UpdatedAt = now
	return nil
}

// Touch bumps updated_at after the project's tasks change
func (r *ProjectRepository) Touch(id string) error {
	if _, err := r.db.Exec("UPDATE projects SET updated_at = ? WHERE id = ?", time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return nil
}

// Count returns the number of projects
func (r *ProjectRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}
