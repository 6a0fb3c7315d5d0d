package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/repository"
	"github.com/jengzang/wbs-backend-go/internal/wbs"
)

// Errors returned by WBS mutations
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrDuplicateTaskID   = errors.New("duplicate task id")
	ErrAggregateReadOnly = errors.New("weight and progress of a task with children are computed")
	ErrMissingField      = errors.New("missing required field")
)

// TaskPatch carries the fields of an update. Nil fields are left unchanged.
type TaskPatch struct {
	ID           *string              `json:"id"`
	Name         *string              `json:"name"`
	Weight       *int                 `json:"weight" binding:"omitempty,min=0,max=100"`
	Progress     *int                 `json:"progress" binding:"omitempty,min=0,max=100"`
	StartDate    *string              `json:"start_date"`
	EndDate      *string              `json:"end_date"`
	Status       *models.TaskStatus   `json:"status"`
	Dependencies *[]models.Dependency `json:"dependencies"`
}

// WBSService is the task store: it owns each project's collection and runs
// the rollup after every mutation. Load, mutate, recompute and persist happen
// under one per-project lock and one transaction.
type WBSService struct {
	db       *sql.DB
	projects *repository.ProjectRepository
	tasks    *repository.WBSRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWBSService creates a new WBS service
func NewWBSService(db *sql.DB, projects *repository.ProjectRepository, tasks *repository.WBSRepository) *WBSService {
	return &WBSService{
		db:       db,
		projects: projects,
		tasks:    tasks,
		locks:    make(map[string]*sync.Mutex),
	}
}

// List returns the project's tasks with IsCalculated re-derived
func (s *WBSService) List(projectID string) ([]models.WBSTask, error) {
	if _, err := s.projects.GetByID(projectID); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	return wbs.Recompute(tasks), nil
}

// Add appends a full task record
func (s *WBSService) Add(projectID string, task models.WBSTask) ([]models.WBSTask, error) {
	if err := requireFields(task); err != nil {
		return nil, err
	}

	return s.mutate(projectID, "add "+task.ID, func(current []models.WBSTask) ([]models.WBSTask, error) {
		if find(current, task.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
		}
		return append(current, normalize(task)), nil
	})
}

// Update applies patch to the task with id. Setting weight or progress on a
// task that has children is rejected unless the value is unchanged.
func (s *WBSService) Update(projectID, id string, patch TaskPatch) ([]models.WBSTask, error) {
	return s.mutate(projectID, "update "+id, func(current []models.WBSTask) ([]models.WBSTask, error) {
		i := find(current, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}

		t := current[i]
		if t.IsCalculated {
			if patch.Weight != nil && *patch.Weight != t.Weight {
				return nil, fmt.Errorf("%w: %s", ErrAggregateReadOnly, id)
			}
			if patch.Progress != nil && *patch.Progress != t.Progress {
				return nil, fmt.Errorf("%w: %s", ErrAggregateReadOnly, id)
			}
		}

		if patch.ID != nil && *patch.ID != id {
			if *patch.ID == "" {
				return nil, fmt.Errorf("%w: id", ErrMissingField)
			}
			if find(current, *patch.ID) >= 0 {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, *patch.ID)
			}
			t.ID = *patch.ID
		}
		if patch.Name != nil {
			if *patch.Name == "" {
				return nil, fmt.Errorf("%w: name", ErrMissingField)
			}
			t.Name = *patch.Name
		}
		if patch.Weight != nil {
			t.Weight = *patch.Weight
		}
		if patch.Progress != nil {
			t.Progress = *patch.Progress
		}
		if patch.StartDate != nil {
			t.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			t.EndDate = *patch.EndDate
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Dependencies != nil {
			t.Dependencies = *patch.Dependencies
		}

		current[i] = normalize(t)
		return current, nil
	})
}

// Delete removes the task with id. Its children, if any, stay in the set.
func (s *WBSService) Delete(projectID, id string) ([]models.WBSTask, error) {
	return s.mutate(projectID, "delete "+id, func(current []models.WBSTask) ([]models.WBSTask, error) {
		i := find(current, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		}
		return append(current[:i], current[i+1:]...), nil
	})
}

// Replace swaps the whole collection, as an import does
func (s *WBSService) Replace(projectID string, tasks []models.WBSTask) ([]models.WBSTask, error) {
	next, err := prepare(tasks)
	if err != nil {
		return nil, err
	}

	return s.mutate(projectID, fmt.Sprintf("replace (%d tasks)", len(next)), func([]models.WBSTask) ([]models.WBSTask, error) {
		return next, nil
	})
}

// Reset clears every task of the project
func (s *WBSService) Reset(projectID string) error {
	_, err := s.mutate(projectID, "reset", func([]models.WBSTask) ([]models.WBSTask, error) {
		return []models.WBSTask{}, nil
	})
	return err
}

// mutate runs fn against a fresh, recomputed snapshot and persists the
// recomputed result as one unit.
func (s *WBSService) mutate(projectID, op string, fn func([]models.WBSTask) ([]models.WBSTask, error)) ([]models.WBSTask, error) {
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	var result []models.WBSTask
	err := database.Transaction(s.db, func(tx *sql.Tx) error {
		projects := s.projects.WithTx(tx)
		tasks := s.tasks.WithTx(tx)

		if _, err := projects.GetByID(projectID); err != nil {
			return err
		}

		current, err := tasks.ListByProject(projectID)
		if err != nil {
			return err
		}

		next, err := fn(wbs.Recompute(current))
		if err != nil {
			return err
		}

		result = wbs.Recompute(next)
		if err := tasks.ReplaceAll(projectID, result); err != nil {
			return err
		}
		return projects.Touch(projectID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("WBS %s: %s, %d tasks, overall %d%%", projectID, op, len(result), wbs.OverallProgress(result))
	return result, nil
}

func (s *WBSService) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock
}

// prepare checks a whole collection for required fields and unique IDs
func prepare(tasks []models.WBSTask) ([]models.WBSTask, error) {
	seen := make(map[string]bool, len(tasks))
	out := make([]models.WBSTask, 0, len(tasks))
	for _, t := range tasks {
		if err := requireFields(t); err != nil {
			return nil, err
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTaskID, t.ID)
		}
		seen[t.ID] = true
		out = append(out, normalize(t))
	}
	return out, nil
}

func requireFields(t models.WBSTask) error {
	if t.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	return nil
}

// normalize derives Level from the ID and defaults an empty status
func normalize(t models.WBSTask) models.WBSTask {
	t = t.Clone()
	t.Level = wbs.Level(t.ID)
	if t.Status == "" {
		t.Status = models.StatusOnTrack
	}
	if t.Dependencies == nil {
		t.Dependencies = []models.Dependency{}
	}
	return t
}

func find(tasks []models.WBSTask, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
