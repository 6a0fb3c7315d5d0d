package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jengzang/wbs-backend-go/internal/models"
	"github.com/jengzang/wbs-backend-go/internal/repository"
	"github.com/jengzang/wbs-backend-go/internal/wbs"
)

// ReportService derives progress reports from the stored WBS. Concurrent
// requests for the same project share one computation.
type ReportService struct {
	projects *repository.ProjectRepository
	wbs      *WBSService
	group    singleflight.Group
	now      func() time.Time
}

// NewReportService creates a new report service
func NewReportService(projects *repository.ProjectRepository, wbsService *WBSService) *ReportService {
	return &ReportService{
		projects: projects,
		wbs:      wbsService,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for empty S-curves and timestamps
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// Build assembles the full progress report of a project
func (s *ReportService) Build(projectID string) (*models.ProgressReport, error) {
	v, err, _ := s.group.Do(projectID, func() (interface{}, error) {
		project, err := s.projects.GetByID(projectID)
		if err != nil {
			return nil, err
		}

		tasks, err := s.wbs.List(projectID)
		if err != nil {
			return nil, err
		}

		now := s.now()
		return &models.ProgressReport{
			Project:         project,
			OverallProgress: wbs.OverallProgress(tasks),
			SCurve:          wbs.SCurve(tasks, now),
			Validation:      wbs.Validate(tasks),
			TaskCount:       len(tasks),
			GeneratedAt:     now.UTC().Format(time.RFC3339),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.ProgressReport), nil
}

// Validate returns the weight/structure signal of a project
func (s *ReportService) Validate(projectID string) (models.Validation, error) {
	tasks, err := s.wbs.List(projectID)
	if err != nil {
		return models.Validation{}, err
	}
	return wbs.Validate(tasks), nil
}

// WriteSCurveCSV writes the S-curve of a project as date,planned,actual rows
func (s *ReportService) WriteSCurveCSV(projectID string, w io.Writer) error {
	report, err := s.Build(projectID)
	if err != nil {
		return err
	}
	return WriteSCurveCSV(w, report.SCurve)
}

// WriteSCurveCSV encodes points with a header row
func WriteSCurveCSV(w io.Writer, points []models.SCurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "planned", "actual"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, p := range points {
		row := []string{p.Date, strconv.Itoa(p.Planned), strconv.Itoa(p.Actual)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
