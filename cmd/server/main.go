package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/config"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/handler"
	"github.com/moodlog/internal/router"
	"github.com/moodlog/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	generator := service.NewGenerationClient(cfg.GeneratorBaseURL, cfg.GeneratorTimeout)
	media := service.NewMediaStore(cfg.UploadDir)
	api := handler.NewAPI(db.DB, generator, media)

	// 设置并运行 Gin 服务器
	r := router.Setup(api, cfg.UploadDir)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
