package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/planfile"
	"github.com/jengzang/wbs-backend-go/internal/service"
	"github.com/jengzang/wbs-backend-go/internal/wbs"
	"github.com/jengzang/wbs-backend-go/pkg/response"
)

// maxImportSize bounds the body of an import request
const maxImportSize = 4 << 20

// TaskView is a task as returned by the API
type TaskView struct {
	models.WBSTask
	ParentID     string `json:"parent_id"`     // derived from ID, "" for top-level
	DurationDays *int   `json:"duration_days"` // nil when either date is missing or malformed
}

// TaskSet is the response of every task read and mutation
type TaskSet struct {
	Tasks           []TaskView        `json:"tasks"`
	OverallProgress int               `json:"overall_progress"`
	Validation      models.Validation `json:"validation"`
}

// TaskRequest is the body of POST /tasks
type TaskRequest struct {
	ID           string              `json:"id" binding:"required"`
	Name         string              `json:"name" binding:"required"`
	Weight       int                 `json:"weight" binding:"min=0,max=100"`
	Progress     int                 `json:"progress" binding:"min=0,max=100"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	Status       models.TaskStatus   `json:"status"`
	Dependencies []models.Dependency `json:"dependencies"`
}

func (r TaskRequest) task() models.WBSTask {
	return models.WBSTask{
		ID:           r.ID,
		Name:         r.Name,
		Weight:       r.Weight,
		Progress:     r.Progress,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Status:       r.Status,
		Dependencies: r.Dependencies,
	}
}

// WBSHandler handles HTTP requests for a project's tasks
type WBSHandler struct {
	service *service.WBSService
}

// NewWBSHandler creates a new WBS handler
func NewWBSHandler(service *service.WBSService) *WBSHandler {
	return &WBSHandler{service: service}
}

// ListTasks handles GET /api/v1/projects/:project/tasks
func (h *WBSHandler) ListTasks(c *gin.Context) {
	tasks, err := h.service.List(c.Param("project"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, NewTaskSet(tasks))
}

// AddTask handles POST /api/v1/projects/:project/tasks
func (h *WBSHandler) AddTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid task: "+err.Error())
		return
	}

	task := req.task()
	if err := checkTasks(task); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tasks, err := h.service.Add(c.Param("project"), task)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, NewTaskSet(tasks))
}

// UpdateTask handles PUT /api/v1/projects/:project/tasks/:id
func (h *WBSHandler) UpdateTask(c *gin.Context) {
	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid task patch: "+err.Error())
		return
	}

	patched := models.WBSTask{ID: c.Param("id")}
	if patch.ID != nil {
		patched.ID = *patch.ID
	}
	if patch.Status != nil {
		patched.Status = *patch.Status
	}
	if patch.Dependencies != nil {
		patched.Dependencies = *patch.Dependencies
	}
	if err := checkTasks(patched); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tasks, err := h.service.Update(c.Param("project"), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, NewTaskSet(tasks))
}

// DeleteTask handles DELETE /api/v1/projects/:project/tasks/:id
func (h *WBSHandler) DeleteTask(c *gin.Context) {
	tasks, err := h.service.Delete(c.Param("project"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, NewTaskSet(tasks))
}

// ResetTasks handles DELETE /api/v1/projects/:project/tasks
func (h *WBSHandler) ResetTasks(c *gin.Context) {
	if err := h.service.Reset(c.Param("project")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, NewTaskSet(nil))
}

// Import handles POST /api/v1/projects/:project/import. The body is a YAML
// or JSON plan; its task list replaces the project's tasks and its project
// header is ignored.
func (h *WBSHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, "plan too large")
			return
		}
		response.BadRequest(c, "Failed to read body: "+err.Error())
		return
	}

	plan, err := planfile.Parse(data)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tasks, err := h.service.Replace(c.Param("project"), plan.Tasks)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, NewTaskSet(tasks))
}

// NewTaskSet wraps tasks with their derived fields
func NewTaskSet(tasks []models.WBSTask) TaskSet {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := TaskView{WBSTask: t, ParentID: wbs.ParentID(t.ID)}
		if d, ok := wbs.DurationDays(t.StartDate, t.EndDate); ok {
			v.DurationDays = &d
		}
		views = append(views, v)
	}
	return TaskSet{
		Tasks:           views,
		OverallProgress: wbs.OverallProgress(tasks),
		Validation:      wbs.Validate(tasks),
	}
}

// checkTasks runs the plan-file field checks over request tasks
func checkTasks(tasks ...models.WBSTask) error {
	return planfile.Check(&planfile.Plan{Tasks: tasks})
}
