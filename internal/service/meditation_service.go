package service

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/moodlog/internal/db"
)

// MeditationService 串联冥想流程：保存上传媒体、调用生成服务、
// 把生成产物转换成公开 URL，并最终落库为当天的情绪日志。
type MeditationService struct {
	logs      *MoodLogService
	generator *GenerationClient
	media     *MediaStore
}

// StartMeditationInput 定义开始冥想时的输入。
// GuideAudio/Image 为可选的上传文件内容。
type StartMeditationInput struct {
	UserID         uint
	Mood           string
	Content        string
	GuideText      string
	MeditationType string
	Duration       int
	GuideAudio     io.Reader
	Image          io.Reader
}

// NewMeditationService 构造 MeditationService
func NewMeditationService(logs *MoodLogService, generator *GenerationClient, media *MediaStore) *MeditationService {
	return &MeditationService{
		logs:      logs,
		generator: generator,
		media:     media,
	}
}

// StartMeditation 以今天为日期创建情绪日志，存储可选的引导音频与图片。
// 视频生成走异步流程，这里不调用生成服务，VideoURL 留空表示尚未生成。
func (s *MeditationService) StartMeditation(input StartMeditationInput) (*db.MoodLog, error) {
	scratch := strconv.FormatInt(time.Now().UnixMilli(), 10)

	var guideAudioURL, imageURL string
	if input.GuideAudio != nil {
		url, err := s.media.SaveMeditationUpload(input.GuideAudio, scratch, "guideAudio.mp3")
		if err != nil {
			return nil, err
		}
		guideAudioURL = url
	}
	if input.Image != nil {
		url, err := s.media.SaveMeditationUpload(input.Image, scratch, "image.png")
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	return s.logs.Save(MoodLogInput{
		UserID:         input.UserID,
		LogDate:        time.Now(),
		Mood:           input.Mood,
		Content:        input.Content,
		GuideText:      input.GuideText,
		MeditationType: input.MeditationType,
		Duration:       input.Duration,
		GuideAudioURL:  guideAudioURL,
		ImageURL:       imageURL,
	})
}

// GenerateText 调用生成服务产出引导文本，不产生任何持久化副作用。
func (s *MeditationService) GenerateText(ctx context.Context, mood, content string) (string, error) {
	return s.generator.GenerateText(ctx, content, mood)
}

// GenerateImage 调用生成服务产出图片，并把产物路径转换成公开 URL。
func (s *MeditationService) GenerateImage(ctx context.Context, textContent, sessionID string) (string, string, error) {
	path, returnedSession, err := s.generator.GenerateImage(ctx, textContent, sessionID)
	if err != nil {
		return "", "", err
	}

	url, err := s.media.ResolveArtifact(path, ArtifactImage)
	if err != nil {
		return "", "", err
	}

	return url, returnedSession, nil
}

// GenerateVideo 调用生成服务产出视频，可选携带上一步生成的图片路径。
func (s *MeditationService) GenerateVideo(ctx context.Context, textContent, imagePath, sessionID string) (string, string, error) {
	path, returnedSession, err := s.generator.GenerateVideo(ctx, textContent, imagePath, sessionID)
	if err != nil {
		return "", "", err
	}

	url, err := s.media.ResolveArtifact(path, ArtifactVideo)
	if err != nil {
		return "", "", err
	}

	return url, returnedSession, nil
}
