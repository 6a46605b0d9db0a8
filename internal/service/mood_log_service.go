package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrMoodLogNotFound 在指定日期没有情绪日志时返回
	ErrMoodLogNotFound = errors.New("mood log not found")
	// ErrInvalidLogDate 在日期字符串不符合 2006-01-02 格式时返回
	ErrInvalidLogDate = errors.New("invalid log date")
	// ErrInvalidMonth 在月份不在 1-12 范围内时返回
	ErrInvalidMonth = errors.New("invalid month")
)

const logDateFormat = "2006-01-02"

// MoodLogService 负责情绪日志的持久化与日历查询。
// 同一用户同一天最多保留一条记录，重复保存时沿用原记录的 ID 执行更新。
type MoodLogService struct {
	db *gorm.DB
}

// MoodLogInput 定义保存情绪日志时可写入的字段
type MoodLogInput struct {
	UserID         uint
	LogDate        time.Time
	Mood           string
	Content        string
	MeditationType string
	Duration       int
	GuideText      string
	GuideAudioURL  string
	ImageURL       string
	VideoURL       string
	ExtraInfo      string
}

// CalendarDay 表示日历视图中的单日条目
type CalendarDay struct {
	Date string `json:"date"`
	Mood string `json:"mood"`
}

// CalendarData 汇总某个月份的全部打点
type CalendarData struct {
	Days []CalendarDay `json:"days"`
}

// NewMoodLogService 构造 MoodLogService
func NewMoodLogService(gdb *gorm.DB) *MoodLogService {
	return &MoodLogService{db: gdb}
}

// Save 以 (UserID, LogDate) 为键执行幂等保存：
// 已存在当天记录时沿用其 ID 与创建时间执行更新，否则插入新记录。
func (s *MoodLogService) Save(input MoodLogInput) (*db.MoodLog, error) {
	logDate := normalizeToDate(input.LogDate)

	record := db.MoodLog{
		UserID:         input.UserID,
		LogDate:        logDate,
		Mood:           input.Mood,
		Content:        input.Content,
		MeditationType: input.MeditationType,
		Duration:       input.Duration,
		GuideText:      input.GuideText,
		GuideAudioURL:  input.GuideAudioURL,
		ImageURL:       input.ImageURL,
		VideoURL:       input.VideoURL,
		ExtraInfo:      input.ExtraInfo,
	}

	var existing db.MoodLog
	err := s.db.Where("user_id = ? AND log_date = ?", input.UserID, logDate).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 当天尚无记录，走插入
	default:
		return nil, fmt.Errorf("find mood log: %w", err)
	}

	if err := s.db.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("save mood log: %w", err)
	}

	return &record, nil
}

// GetByDate 返回用户在指定日期（2006-01-02）的情绪日志。
func (s *MoodLogService) GetByDate(userID uint, date string) (*db.MoodLog, error) {
	logDate, err := time.ParseInLocation(logDateFormat, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLogDate, date)
	}

	var record db.MoodLog
	if err := s.db.Where("user_id = ? AND log_date = ?", userID, logDate).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMoodLogNotFound
		}
		return nil, fmt.Errorf("get mood log: %w", err)
	}

	return &record, nil
}

// FindAllByUser 返回用户的全部情绪日志，顺序对调用方没有约束。
func (s *MoodLogService) FindAllByUser(userID uint) ([]db.MoodLog, error) {
	var logs []db.MoodLog
	if err := s.db.Where("user_id = ?", userID).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list mood logs: %w", err)
	}
	return logs, nil
}

// Calendar 过滤出指定月份内的日志并投影为 {date, mood} 列表。
// 区间为 [当月第一天, 当月最后一天]，两端都包含。
func (s *MoodLogService) Calendar(userID uint, year, month int) (CalendarData, error) {
	if month < 1 || month > 12 {
		return CalendarData{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}

	logs, err := s.FindAllByUser(userID)
	if err != nil {
		return CalendarData{}, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)

	days := make([]CalendarDay, 0, len(logs))
	for _, log := range logs {
		date := normalizeToDate(log.LogDate)
		if date.Before(start) || date.After(end) {
			continue
		}
		days = append(days, CalendarDay{
			Date: date.Format(logDateFormat),
			Mood: log.Mood,
		})
	}

	return CalendarData{Days: days}, nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
