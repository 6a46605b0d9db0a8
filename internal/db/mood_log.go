package db

import (
	"time"

	"gorm.io/gorm"
)

// MoodLog 记录用户每天的情绪日志以及冥想相关的媒体信息
// UserID + LogDate 采用唯一索引，保证同一天最多一条记录
// GuideAudioURL/ImageURL/VideoURL 保存可公开访问的媒体路径
// VideoURL 为空表示视频生成尚未完成（异步流程）
type MoodLog struct {
	gorm.Model
	UserID         uint      `gorm:"index;index:idx_mood_log_user_date,unique"`
	LogDate        time.Time `gorm:"index:idx_mood_log_user_date,unique"`
	Mood           string
	Content        string `gorm:"type:text"`
	MeditationType string
	Duration       int
	GuideText      string `gorm:"type:text"`
	GuideAudioURL  string
	ImageURL       string
	VideoURL       string
	ExtraInfo      string
}

// TableName 重写确保唯一索引作用到 user_id + log_date
func (MoodLog) TableName() string {
	return "mood_logs"
}
