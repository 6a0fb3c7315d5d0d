package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/models"
)

// WBSRepository persists the task collection of each project. It always
// reads and writes the whole collection; there are no per-row updates.
type WBSRepository struct {
	db database.DBTX
}

// NewWBSRepository creates a new WBS repository
func NewWBSRepository(db database.DBTX) *WBSRepository {
	return &WBSRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *WBSRepository) WithTx(tx *sql.Tx) *WBSRepository {
	return &WBSRepository{db: tx}
}

// ListByProject loads a project's tasks in their stored order.
// IsCalculated is left false; callers recompute it.
func (r *WBSRepository) ListByProject(projectID string) ([]models.WBSTask, error) {
	query := `
		SELECT task_id, name, weight, progress, level, start_date, end_date,
			   status, dependencies_json
		FROM wbs_tasks
		WHERE project_id = ?
		ORDER BY position
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wbs tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.WBSTask{}
	for rows.Next() {
		var t models.WBSTask
		var depsJSON string
		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Weight,
			&t.Progress,
			&t.Level,
			&t.StartDate,
			&t.EndDate,
			&t.Status,
			&depsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wbs task: %w", err)
		}

		if err := json.Unmarshal([]byte(depsJSON), &t.Dependencies); err != nil {
			return nil, fmt.Errorf("failed to decode dependencies of task %s: %w", t.ID, err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// ReplaceAll overwrites the stored collection of a project with tasks.
// Run it inside a transaction so readers never see a partial set.
func (r *WBSRepository) ReplaceAll(projectID string, tasks []models.WBSTask) error {
	if err := r.DeleteByProject(projectID); err != nil {
		return err
	}

	query := `
		INSERT INTO wbs_tasks (
			project_id, task_id, position, name, weight, progress, level,
			start_date, end_date, status, dependencies_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, t := range tasks {
		deps := t.Dependencies
		if deps == nil {
			deps = []models.Dependency{}
		}
		depsJSON, err := json.Marshal(deps)
		if err != nil {
			return fmt.Errorf("failed to encode dependencies of task %s: %w", t.ID, err)
		}

		_, err = r.db.Exec(query,
			projectID,
			t.ID,
			i,
			t.Name,
			t.Weight,
			t.Progress,
			t.Level,
			t.StartDate,
			t.EndDate,
			string(t.Status),
			string(depsJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert wbs task %s: %w", t.ID, err)
		}
	}

	return nil
}

// DeleteByProject removes every task of a project
func (r *WBSRepository) DeleteByProject(projectID string) error {
	if _, err := r.db.Exec("DELETE FROM wbs_tasks WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("failed to delete wbs tasks: %w", err)
	}
	return nil
}
