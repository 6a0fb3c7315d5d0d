package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/wbs-backend-go/internal/config"
	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/handler"
	"github.com/jengzang/wbs-backend-go/internal/middleware"
	"github.com/jengzang/wbs-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newServer(t *testing.T, authRequired bool) *testServer {
	t.Helper()
	conn, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "wbs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", AuthRequired: authRequired, RateLimit: 0}
	return &testServer{t: t, router: SetupRouter(cfg, NewServices(conn))}
}

func (s *testServer) as(role string) *testServer {
	token, err := middleware.IssueToken("test-secret", strings.ToLower(role), role, time.Hour)
	require.NoError(s.t, err)
	return &testServer{t: s.t, router: s.router, token: token}
}

// withPermissions signs a token carrying exactly perms, outside the role presets
func (s *testServer) withPermissions(perms models.Permissions) *testServer {
	claims := middleware.Claims{
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "custom",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(s.t, err)
	return &testServer{t: s.t, router: s.router, token: token}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func (s *testServer) createProject(name string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/projects", gin.H{"name": name, "owner": "John Doe"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Project](s.t, w).ID
}

func find(t *testing.T, set handler.TaskSet, id string) handler.TaskView {
	t.Helper()
	for _, v := range set.Tasks {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("task %s not in response", id)
	return handler.TaskView{}
}

func TestHealth(t *testing.T) {
	s := newServer(t, true)
	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestTaskLifecycle(t *testing.T) {
	s := newServer(t, false)
	pid := s.createProject("Project Alpha")
	base := "/api/v1/projects/" + pid

	for _, task := range []gin.H{
		{"id": "1.0", "name": "Project Start"},
		{"id": "1.1", "name": "Requirements", "weight": 5, "progress": 100, "start_date": "2023-11-01", "end_date": "2023-11-08"},
		{"id": "1.2", "name": "Planning", "weight": 5, "progress": 100},
	} {
		w := s.do(http.MethodPost, base+"/tasks", task)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, base+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	set := decode[handler.TaskSet](t, w)

	parent := find(t, set, "1.0")
	assert.Equal(t, 10, parent.Weight)
	assert.Equal(t, 100, parent.Progress)
	assert.True(t, parent.IsCalculated)
	assert.Equal(t, models.StatusOnTrack, parent.Status)
	assert.Nil(t, parent.DurationDays)

	assert.Empty(t, parent.ParentID)

	child := find(t, set, "1.1")
	assert.Equal(t, "1.0", child.ParentID)
	require.NotNil(t, child.DurationDays)
	assert.Equal(t, 7, *child.DurationDays)
	assert.Equal(t, 1, child.Level)

	assert.Equal(t, 100, set.OverallProgress)
	assert.Equal(t, 10, set.Validation.TopLevelWeight)
	assert.False(t, set.Validation.WeightValid)

	// Progress of a child propagates
	w = s.do(http.MethodPut, base+"/tasks/1.2", gin.H{"progress": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 50, find(t, decode[handler.TaskSet](t, w), "1.0").Progress)

	// Aggregates are read-only
	w = s.do(http.MethodPut, base+"/tasks/1.0", gin.H{"progress": 10})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Renaming an aggregate is fine
	w = s.do(http.MethodPut, base+"/tasks/1.0", gin.H{"name": "Kickoff"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Kickoff", find(t, decode[handler.TaskSet](t, w), "1.0").Name)

	w = s.do(http.MethodPost, base+"/tasks", gin.H{"id": "1.1", "name": "Again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, base+"/tasks/9.9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, base+"/tasks/1.2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[handler.TaskSet](t, w).Tasks, 2)

	w = s.do(http.MethodDelete, base+"/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handler.TaskSet](t, w).Tasks)
}

func TestAddTask_Validation(t *testing.T) {
	s := newServer(t, false)
	base := "/api/v1/projects/" + s.createProject("P")

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing name", gin.H{"id": "1"}},
		{"weight above 100", gin.H{"id": "1", "name": "A", "weight": 150}},
		{"negative progress", gin.H{"id": "1", "name": "A", "progress": -1}},
		{"unknown status", gin.H{"id": "1", "name": "A", "status": "Sleeping"}},
		{"unknown dependency type", gin.H{"id": "1", "name": "A", "dependencies": []gin.H{{"predecessor_id": "2", "type": "XX"}}}},
		{"malformed json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, base+"/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestTaskErrorsNameTheTask(t *testing.T) {
	s := newServer(t, false)
	base := "/api/v1/projects/" + s.createProject("P")

	w := s.do(http.MethodPost, base+"/tasks", gin.H{"id": "3.1", "name": "A", "status": "Sleeping"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `task 3.1: unknown status \"Sleeping\"`)

	w = s.do(http.MethodPost, base+"/tasks", gin.H{"id": "3.1", "name": "A"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPut, base+"/tasks/3.1", gin.H{"dependencies": []gin.H{{"predecessor_id": "1", "type": "XX"}}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `task 3.1: unknown dependency type \"XX\"`)
}

func TestImport_RejectsOutOfRange(t *testing.T) {
	s := newServer(t, false)
	base := "/api/v1/projects/" + s.createProject("P")

	w := s.do(http.MethodPost, base+"/import", "tasks: [{id: '1', name: A, weight: 120}]")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "task 1: weight 120 out of range 0-100")
}

func TestImport_RequiresDelete(t *testing.T) {
	s := newServer(t, true)
	admin := s.as(models.RoleAdmin)
	base := "/api/v1/projects/" + admin.createProject("Guarded")

	w := admin.do(http.MethodPost, base+"/tasks", gin.H{"id": "1", "name": "A", "weight": 100})
	require.Equal(t, http.StatusCreated, w.Code)

	addOnly := s.withPermissions(models.Permissions{Add: true, View: true})
	w = addOnly.do(http.MethodPost, base+"/import", "tasks: []")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Adding single tasks is still allowed
	w = addOnly.do(http.MethodPost, base+"/tasks", gin.H{"id": "2", "name": "B"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = admin.do(http.MethodGet, base+"/tasks", nil)
	assert.Len(t, decode[handler.TaskSet](t, w).Tasks, 2)

	w = admin.do(http.MethodPost, base+"/import", "tasks: []")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handler.TaskSet](t, w).Tasks)
}

func TestUnknownProject(t *testing.T) {
	s := newServer(t, false)

	for _, path := range []string{
		"/api/v1/projects/nope",
		"/api/v1/projects/nope/tasks",
		"/api/v1/projects/nope/report",
		"/api/v1/projects/nope/validation",
	} {
		w := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestImportAndReport(t *testing.T) {
	s := newServer(t, false)
	base := "/api/v1/projects/" + s.createProject("Imported")

	plan := `
tasks:
  - {id: "1.0", name: A, end_date: "2024-01-20"}
  - {id: "1.1", name: A1, weight: 50, progress: 100, end_date: "2024-01-10"}
  - {id: "1.2", name: A2, weight: 50, progress: 0, end_date: "2024-01-20"}
  - {id: "2.0", name: B, weight: 0, progress: 0, end_date: "2024-02-01"}
`
	w := s.do(http.MethodPost, base+"/import", plan)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	set := decode[handler.TaskSet](t, w)
	assert.Len(t, set.Tasks, 4)
	assert.Equal(t, 50, set.OverallProgress)

	w = s.do(http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[models.ProgressReport](t, w)
	assert.Equal(t, "Imported", report.Project.Name)
	assert.Equal(t, 50, report.OverallProgress)
	assert.Equal(t, 4, report.TaskCount)
	require.Len(t, report.SCurve, 2)
	assert.Equal(t, models.SCurvePoint{Date: "2024-02-01", Planned: 100, Actual: 50}, report.SCurve[1])

	w = s.do(http.MethodGet, base+"/validation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Validation](t, w).WeightValid)

	w = s.do(http.MethodGet, base+"/report/scurve.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "date,planned,actual\n2024-01-20,100,50\n2024-02-01,100,50\n", w.Body.String())

	w = s.do(http.MethodPost, base+"/import", "tasks: [{id: '1', name: A, status: Nope}]")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProjectWithTasks(t *testing.T) {
	s := newServer(t, false)

	w := s.do(http.MethodPost, "/api/v1/projects", gin.H{
		"name": "Seeded",
		"tasks": []gin.H{
			{"id": "1", "name": "Design", "weight": 40, "progress": 50},
			{"id": "2", "name": "Build", "weight": 60, "progress": 0},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pid := decode[models.Project](t, w).ID

	w = s.do(http.MethodGet, "/api/v1/projects/"+pid+"/tasks", nil)
	set := decode[handler.TaskSet](t, w)
	assert.Len(t, set.Tasks, 2)
	assert.Equal(t, 20, set.OverallProgress)

	w = s.do(http.MethodPut, "/api/v1/projects/"+pid, gin.H{"name": "Renamed", "executor": "Team B"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Team B", decode[models.Project](t, w).Executor)

	w = s.do(http.MethodGet, "/api/v1/projects", nil)
	assert.Len(t, decode[[]models.Project](t, w), 1)
}

func TestPermissions(t *testing.T) {
	s := newServer(t, true)

	w := s.do(http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := s.as(models.RoleAdmin)
	pid := admin.createProject("Guarded")
	base := "/api/v1/projects/" + pid

	w = admin.do(http.MethodPost, base+"/tasks", gin.H{"id": "1", "name": "A", "weight": 100})
	require.Equal(t, http.StatusCreated, w.Code)

	reporter := s.as(models.RoleReporter)
	assert.Equal(t, http.StatusForbidden, reporter.do(http.MethodPost, base+"/tasks", gin.H{"id": "2", "name": "B"}).Code)
	assert.Equal(t, http.StatusOK, reporter.do(http.MethodPut, base+"/tasks/1", gin.H{"progress": 30}).Code)
	assert.Equal(t, http.StatusForbidden, reporter.do(http.MethodDelete, base+"/tasks/1", nil).Code)

	user := s.as(models.RoleUser)
	assert.Equal(t, http.StatusOK, user.do(http.MethodGet, base+"/report", nil).Code)
	assert.Equal(t, http.StatusForbidden, user.do(http.MethodPut, base+"/tasks/1", gin.H{"progress": 40}).Code)
	assert.Equal(t, http.StatusForbidden, user.do(http.MethodPost, "/api/v1/projects", gin.H{"name": "X"}).Code)
}
