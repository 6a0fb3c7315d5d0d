package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/wbs-backend-go/internal/config"
	"github.com/jengzang/wbs-backend-go/internal/handler"
	"github.com/jengzang/wbs-backend-go/internal/middleware"
	"github.com/jengzang/wbs-backend-go/internal/repository"
	"github.com/jengzang/wbs-backend-go/internal/service"
)

// Services 路由依赖的服务
type Services struct {
	Projects *service.ProjectService
	WBS      *service.WBSService
	Reports  *service.ReportService
}

// NewServices 基于同一数据库连接组装服务
func NewServices(db *sql.DB) Services {
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewWBSRepository(db)
	wbsService := service.NewWBSService(db, projectRepo, taskRepo)

	return Services{
		Projects: service.NewProjectService(db, projectRepo, taskRepo),
		WBS:      wbsService,
		Reports:  service.NewReportService(projectRepo, wbsService),
	}
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "WBS Backend API is running",
		})
	})

	projectHandler := handler.NewProjectHandler(svc.Projects)
	wbsHandler := handler.NewWBSHandler(svc.WBS)
	reportHandler := handler.NewReportHandler(svc.Reports)

	view := middleware.RequirePermission(middleware.PermView)
	add := middleware.RequirePermission(middleware.PermAdd)
	edit := middleware.RequirePermission(middleware.PermEdit)
	del := middleware.RequirePermission(middleware.PermDelete)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(cfg.JWTSecret, cfg.AuthRequired),
		middleware.RateLimit(cfg.RateLimit, time.Minute),
	)
	{
		// 项目接口
		api.GET("/projects", view, projectHandler.ListProjects)
		api.POST("/projects", add, projectHandler.CreateProject)

		project := api.Group("/projects/:project")
		{
			project.GET("", view, projectHandler.GetProject)
			project.PUT("", edit, projectHandler.UpdateProject)

			// WBS 任务接口
			project.GET("/tasks", view, wbsHandler.ListTasks)
			project.POST("/tasks", add, wbsHandler.AddTask)
			project.DELETE("/tasks", del, wbsHandler.ResetTasks)
			project.PUT("/tasks/:id", edit, wbsHandler.UpdateTask)
			project.DELETE("/tasks/:id", del, wbsHandler.DeleteTask)
			// 导入会整体替换任务，需同时具备新增与删除权限
			project.POST("/import", add, del, wbsHandler.Import)

			// 报表接口
			project.GET("/validation", view, reportHandler.GetValidation)
			project.GET("/report", view, reportHandler.GetReport)
			project.GET("/report/scurve.csv", view, reportHandler.GetSCurveCSV)
		}
	}

	return r
}
