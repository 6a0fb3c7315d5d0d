package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/service"
	"github.com/jengzang/wbs-backend-go/pkg/response"
)

// ProjectRequest is the body of project create and update
type ProjectRequest struct {
	Name     string `json:"name" binding:"required"`
	Owner    string `json:"owner"`
	Executor string `json:"executor"`

	// Initial tasks, create only
	Tasks []models.WBSTask `json:"tasks"`
}

// ProjectHandler handles HTTP requests for projects
type ProjectHandler struct {
	service *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.List()
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, projects)
}

// GetProject handles GET /api/v1/projects/:project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.service.Get(c.Param("project"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, project)
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid project: "+err.Error())
		return
	}

	if err := checkTasks(req.Tasks...); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var (
		project *models.Project
		err     error
	)
	if len(req.Tasks) > 0 {
		project, err = h.service.CreateWithTasks(req.Name, req.Owner, req.Executor, req.Tasks)
	} else {
		project, err = h.service.Create(req.Name, req.Owner, req.Executor)
	}
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, project)
}

// UpdateProject handles PUT /api/v1/projects/:project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid project: "+err.Error())
		return
	}

	project, err := h.service.Update(c.Param("project"), req.Name, req.Owner, req.Executor)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, project)
}
