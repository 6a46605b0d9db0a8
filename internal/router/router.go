package router

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/handler"
)

// Setup 配置 Gin 引擎、静态资源映射与路由。
// uploadDir 下的 images/videos 子目录对外暴露为 /images 与 /videos，
// 整个存储树同时挂载到 /uploads，供冥想上传媒体访问。
func Setup(api *handler.API, uploadDir string) *gin.Engine {
	r := gin.Default()

	// 静态文件服务
	r.Static("/images", filepath.Join(uploadDir, "images"))
	r.Static("/videos", filepath.Join(uploadDir, "videos"))
	r.Static("/uploads", uploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	moodLogs := r.Group("/mood-logs")
	{
		moodLogs.POST("", api.CreateMoodLog)
		moodLogs.GET("/calendar", api.GetCalendar)
		moodLogs.GET("/date", api.GetMoodLogByDate)
		moodLogs.POST("/startMeditation", api.StartMeditation)
		moodLogs.POST("/generateText", api.GenerateText)
		moodLogs.POST("/generateImage", api.GenerateImage)
		moodLogs.POST("/generateVideoFromText", api.GenerateVideoFromText)
		moodLogs.POST("/uploadImage", api.UploadImage)
	}

	return r
}
