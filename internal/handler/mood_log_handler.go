package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/service"
)

const dateFormat = "2006-01-02"

type moodLogPayload struct {
	UserID         uint   `json:"userId"`
	LogDate        string `json:"logDate"` // 2006-01-02
	Mood           string `json:"mood"`
	Content        string `json:"content"`
	MeditationType string `json:"meditationType"`
	Duration       int    `json:"duration"`
	GuideText      string `json:"guideText"`
	GuideAudioURL  string `json:"guideAudioUrl"`
	ImageURL       string `json:"imageUrl"`
	VideoURL       string `json:"videoUrl"`
	ExtraInfo      string `json:"extraInfo"`
}

// CreateMoodLog 创建或更新当天的情绪日志
func (a *API) CreateMoodLog(c *gin.Context) {
	var payload moodLogPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if payload.UserID == 0 {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	logDate := time.Now()
	if strings.TrimSpace(payload.LogDate) != "" {
		parsed, err := time.ParseInLocation(dateFormat, payload.LogDate, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的日志日期")
			return
		}
		logDate = parsed
	}

	saved, err := a.logs.Save(service.MoodLogInput{
		UserID:         payload.UserID,
		LogDate:        logDate,
		Mood:           payload.Mood,
		Content:        payload.Content,
		MeditationType: payload.MeditationType,
		Duration:       payload.Duration,
		GuideText:      payload.GuideText,
		GuideAudioURL:  payload.GuideAudioURL,
		ImageURL:       payload.ImageURL,
		VideoURL:       payload.VideoURL,
		ExtraInfo:      payload.ExtraInfo,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存情绪日志失败")
		return
	}

	c.JSON(http.StatusOK, serializeMoodLog(*saved))
}

// GetCalendar 返回某个月份的情绪日历
func (a *API) GetCalendar(c *gin.Context) {
	userID, err := parseUintQuery(c, "userId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}
	year, err := parseIntQuery(c, "year")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的年份")
		return
	}
	month, err := parseIntQuery(c, "month")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的月份")
		return
	}

	calendar, err := a.logs.Calendar(userID, year, month)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMonth) {
			respondError(c, http.StatusBadRequest, "无效的月份")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取情绪日历失败")
		return
	}

	c.JSON(http.StatusOK, calendar)
}

// GetMoodLogByDate 返回用户在指定日期的情绪日志
func (a *API) GetMoodLogByDate(c *gin.Context) {
	userID, err := parseUintQuery(c, "userId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	log, err := a.logs.GetByDate(userID, c.Query("date"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLogDate):
			respondError(c, http.StatusBadRequest, "无效的查询日期")
		case errors.Is(err, service.ErrMoodLogNotFound):
			respondError(c, http.StatusNotFound, "未找到该日期的情绪日志")
		default:
			respondError(c, http.StatusInternalServerError, "获取情绪日志失败")
		}
		return
	}

	payload := serializeMoodLog(*log)
	payload["contentHtml"] = renderMarkdown(log.Content)
	c.JSON(http.StatusOK, payload)
}

// StartMeditation 开始一次冥想：保存上传媒体并落库当天的日志
func (a *API) StartMeditation(c *gin.Context) {
	userID, err := parseUintForm(c, "userId")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	duration := 0
	if raw := strings.TrimSpace(c.PostForm("duration")); raw != "" {
		if duration, err = strconv.Atoi(raw); err != nil {
			respondError(c, http.StatusBadRequest, "无效的冥想时长")
			return
		}
	}

	input := service.StartMeditationInput{
		UserID:         userID,
		Mood:           c.PostForm("mood"),
		Content:        c.PostForm("content"),
		GuideText:      c.PostForm("guideText"),
		MeditationType: c.PostForm("meditationType"),
		Duration:       duration,
	}

	guideAudio, ok := openFormFile(c, "guideAudio")
	if !ok {
		return
	}
	if guideAudio != nil {
		defer guideAudio.Close()
		input.GuideAudio = guideAudio
	}

	image, ok := openFormFile(c, "image")
	if !ok {
		return
	}
	if image != nil {
		defer image.Close()
		input.Image = image
	}

	saved, err := a.meditation.StartMeditation(input)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "保存情绪日志失败")
		return
	}

	c.JSON(http.StatusOK, serializeMoodLog(*saved))
}

// GenerateText 调用生成服务产出引导文本
func (a *API) GenerateText(c *gin.Context) {
	if _, err := parseUintForm(c, "userId"); err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	text, err := a.meditation.GenerateText(c.Request.Context(), c.PostForm("mood"), c.PostForm("content"))
	if err != nil {
		respondGenerationError(c, err, "生成文本失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

// GenerateImage 调用生成服务产出图片并返回公开 URL
func (a *API) GenerateImage(c *gin.Context) {
	if _, err := parseUintForm(c, "userId"); err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	imageURL, sessionID, err := a.meditation.GenerateImage(
		c.Request.Context(), c.PostForm("textContent"), c.PostForm("sessionId"))
	if err != nil {
		respondGenerationError(c, err, "生成图片失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": imageURL, "sessionId": sessionID})
}

// GenerateVideoFromText 调用生成服务产出视频并返回公开 URL
func (a *API) GenerateVideoFromText(c *gin.Context) {
	if _, err := parseUintForm(c, "userId"); err != nil {
		respondError(c, http.StatusBadRequest, "无效的用户ID")
		return
	}

	videoURL, sessionID, err := a.meditation.GenerateVideo(
		c.Request.Context(), c.PostForm("textContent"), c.PostForm("imagePath"), c.PostForm("sessionId"))
	if err != nil {
		respondGenerationError(c, err, "生成视频失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"videoUrl": videoURL, "sessionId": sessionID})
}

// openFormFile 打开可选的上传文件；文件缺失不视为错误。
// 第二个返回值为 false 时已向客户端写入错误响应。
func openFormFile(c *gin.Context, field string) (multipart.File, bool) {
	header, err := c.FormFile(field)
	if err != nil || header == nil || header.Size == 0 {
		return nil, true
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return nil, false
	}

	return file, true
}

// respondGenerationError 把生成管线的失败映射成对外响应。
// 远端返回的错误信息原样透传，便于前端直接展示。
func respondGenerationError(c *gin.Context, err error, fallback string) {
	var remoteErr *service.RemoteGenerationError
	switch {
	case errors.As(err, &remoteErr):
		respondError(c, http.StatusInternalServerError, remoteErr.Message)
	case errors.Is(err, service.ErrSourceMissing):
		respondError(c, http.StatusInternalServerError, "生成产物文件不存在")
	case errors.Is(err, service.ErrEmptyArtifactPath):
		respondError(c, http.StatusInternalServerError, "生成服务返回了空的产物路径")
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func serializeMoodLog(log db.MoodLog) gin.H {
	return gin.H{
		"id":             log.ID,
		"userId":         log.UserID,
		"logDate":        log.LogDate.Format(dateFormat),
		"mood":           log.Mood,
		"content":        log.Content,
		"meditationType": log.MeditationType,
		"duration":       log.Duration,
		"guideText":      log.GuideText,
		"guideAudioUrl":  log.GuideAudioURL,
		"imageUrl":       log.ImageURL,
		"videoUrl":       log.VideoURL,
		"extraInfo":      log.ExtraInfo,
		"createdAt":      log.CreatedAt.Format(time.RFC3339),
	}
}
