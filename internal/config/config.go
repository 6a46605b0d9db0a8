package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabasePath     string
	GinMode          string
	UploadDir        string
	GeneratorBaseURL string
	GeneratorTimeout time.Duration
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 本地开发时支持通过 .env 文件注入变量。
func Load() AppConfig {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "moodlog.db"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	generatorBaseURL := strings.TrimSpace(os.Getenv("GENERATOR_BASE_URL"))
	if generatorBaseURL == "" {
		generatorBaseURL = "http://localhost:8008"
	}

	generatorTimeout := 300 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GENERATOR_TIMEOUT_SECONDS")); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			generatorTimeout = time.Duration(seconds) * time.Second
		}
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabasePath:     databasePath,
		GinMode:          ginMode,
		UploadDir:        uploadDir,
		GeneratorBaseURL: generatorBaseURL,
		GeneratorTimeout: generatorTimeout,
	}
}
