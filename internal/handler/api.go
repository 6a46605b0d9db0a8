package handler

import (
	"github.com/moodlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	logs       *service.MoodLogService
	meditation *service.MeditationService
	media      *service.MediaStore
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, generator *service.GenerationClient, media *service.MediaStore) *API {
	logs := service.NewMoodLogService(gdb)

	return &API{
		db:         gdb,
		logs:       logs,
		meditation: service.NewMeditationService(logs, generator, media),
		media:      media,
	}
}
