package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/wbs-backend-go/internal/service"
	"github.com/jengzang/wbs-backend-go/pkg/response"
)

// ReportHandler handles HTTP requests for progress reports
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetReport handles GET /api/v1/projects/:project/report
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.service.Build(c.Param("project"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, report)
}

// GetValidation handles GET /api/v1/projects/:project/validation
func (h *ReportHandler) GetValidation(c *gin.Context) {
	v, err := h.service.Validate(c.Param("project"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, v)
}

// GetSCurveCSV handles GET /api/v1/projects/:project/report/scurve.csv
func (h *ReportHandler) GetSCurveCSV(c *gin.Context) {
	project := c.Param("project")

	// Buffer so a late error can still produce a JSON error response
	var buf bytes.Buffer
	if err := h.service.WriteSCurveCSV(project, &buf); err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="scurve-`+project+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
