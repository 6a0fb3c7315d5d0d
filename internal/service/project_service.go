package service

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/repository"
	"github.com/jengzang/wbs-backend-go/internal/wbs"
)

// ProjectService handles project header business logic
type ProjectService struct {
	db    *sql.DB
	repo  *repository.ProjectRepository
	tasks *repository.WBSRepository
}

// NewProjectService creates a new project service
func NewProjectService(db *sql.DB, repo *repository.ProjectRepository, tasks *repository.WBSRepository) *ProjectService {
	return &ProjectService{db: db, repo: repo, tasks: tasks}
}

// Create creates a project with a fresh UUID
func (s *ProjectService) Create(name, owner, executor string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	p := &models.Project{
		ID:       uuid.NewString(),
		Name:     name,
		Owner:    owner,
		Executor: executor,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}

	log.Printf("Created project %s (%s)", p.ID, p.Name)
	return p, nil
}

// CreateWithTasks creates a project and stores its rolled-up initial tasks
// in one transaction.
func (s *ProjectService) CreateWithTasks(name, owner, executor string, tasks []models.WBSTask) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	prepared, err := prepare(tasks)
	if err != nil {
		return nil, err
	}
	tasks = wbs.Recompute(prepared)

	p := &models.Project{
		ID:       uuid.NewString(),
		Name:     name,
		Owner:    owner,
		Executor: executor,
	}
	err = database.Transaction(s.db, func(tx *sql.Tx) error {
		if err := s.repo.WithTx(tx).Create(p); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).ReplaceAll(p.ID, tasks)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Created project %s (%s) with %d tasks", p.ID, p.Name, len(tasks))
	return p, nil
}

// Get retrieves a project by ID
func (s *ProjectService) Get(id string) (*models.Project, error) {
	return s.repo.GetByID(id)
}

// List retrieves all projects
func (s *ProjectService) List() ([]*models.Project, error) {
	return s.repo.List()
}

// Update replaces the descriptive fields of a project
func (s *ProjectService) Update(id, name, owner, executor string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}

	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	p.Name = name
	p.Owner = owner
	p.Executor = executor
	if err := s.repo.Update(p); err != nil {
		return nil, err
	}

	return p, nil
}

// Count returns the number of projects
func (s *ProjectService) Count() (int, error) {
	return s.repo.Count()
}
