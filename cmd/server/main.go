package main

import (
	"log"

	"github.com/jengzang/wbs-backend-go/internal/api"
	"github.com/jengzang/wbs-backend-go/internal/config"
	"github.com/jengzang/wbs-backend-go/internal/database"
	"github.com/jengzang/wbs-backend-go/internal/planfile"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	services := api.NewServices(database.GetDB())

	// 首次启动导入示例项目
	if cfg.SeedSample {
		count, err := services.Projects.Count()
		if err != nil {
			log.Fatal("Failed to count projects:", err)
		}
		if count == 0 {
			plan := planfile.Sample()
			p, err := services.Projects.CreateWithTasks(plan.Project.Name, plan.Project.Owner, plan.Project.Executor, plan.Tasks)
			if err != nil {
				log.Fatal("Failed to seed sample project:", err)
			}
			log.Printf("Seeded sample project %s", p.ID)
		}
	}

	if !cfg.AuthRequired {
		log.Printf("Authentication disabled, all requests run with full permissions")
	}

	// 初始化路由
	router := api.SetupRouter(cfg, services)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
