package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrSourceMissing 在生成服务声称的产物文件在磁盘上不存在时返回
	ErrSourceMissing = errors.New("source artifact file not found")
	// ErrEmptyArtifactPath 在生成服务返回成功但产物路径为空时返回
	ErrEmptyArtifactPath = errors.New("artifact path is empty")
	// ErrUnknownArtifactCategory 在产物类别不是 image/video 时返回
	ErrUnknownArtifactCategory = errors.New("unknown artifact category")
)

// ArtifactCategory 区分生成产物的类别，决定落盘子目录与扩展名。
type ArtifactCategory string

const (
	ArtifactImage ArtifactCategory = "image"
	ArtifactVideo ArtifactCategory = "video"
)

type artifactLayout struct {
	dir    string
	ext    string
	prefix string
}

func (c ArtifactCategory) layout() (artifactLayout, error) {
	switch c {
	case ArtifactImage:
		return artifactLayout{dir: "images", ext: ".png", prefix: "meditation_image_"}, nil
	case ArtifactVideo:
		return artifactLayout{dir: "videos", ext: ".mp4", prefix: "meditation_video_"}, nil
	default:
		return artifactLayout{}, fmt.Errorf("%w: %s", ErrUnknownArtifactCategory, string(c))
	}
}

// MediaStore 管理本地存储根目录下的媒体文件。
// 生成服务有时直接把产物写进共享的存储树，有时写进自己的临时目录，
// ResolveArtifact 对两种情况都要能给出可对外访问的 URL。
type MediaStore struct {
	root string
}

// NewMediaStore 构造 MediaStore，root 为空时回退到默认的 uploads 目录。
func NewMediaStore(root string) *MediaStore {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "uploads"
	}
	return &MediaStore{root: filepath.Clean(root)}
}

// Root 返回存储根目录，供静态资源映射使用。
func (s *MediaStore) Root() string {
	return s.root
}

// ResolveArtifact 把生成服务返回的产物路径转换成公开 URL。
// 路径已位于存储树内时不做复制，直接截取从存储根段开始的后缀；
// 否则复制到对应类别目录下，文件名使用毫秒时间戳保证不冲突。
func (s *MediaStore) ResolveArtifact(sourcePath string, category ArtifactCategory) (string, error) {
	layout, err := category.layout()
	if err != nil {
		return "", err
	}

	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return "", ErrEmptyArtifactPath
	}

	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceMissing, sourcePath)
		}
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	marker := filepath.Base(s.root)
	normalized := filepath.ToSlash(sourcePath)
	if strings.Contains(normalized, marker+"/"+layout.dir+"/") {
		return "/" + normalized[strings.Index(normalized, marker+"/"):], nil
	}

	targetDir := filepath.Join(s.root, layout.dir)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s directory: %w", layout.dir, err)
	}

	name := fmt.Sprintf("%s%d%s", layout.prefix, time.Now().UnixMilli(), layout.ext)
	if err := copyFile(sourcePath, filepath.Join(targetDir, name)); err != nil {
		return "", fmt.Errorf("copy artifact: %w", err)
	}

	return "/" + layout.dir + "/" + name, nil
}

// SaveMeditationUpload 把上传的冥想媒体写入按请求隔离的临时子目录。
// scratch 是调用方生成的毫秒时间戳，同一次请求内的多个文件共用一个目录。
func (s *MediaStore) SaveMeditationUpload(src io.Reader, scratch, filename string) (string, error) {
	dir := filepath.Join(s.root, "moodlog", scratch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return "/" + filepath.Base(s.root) + "/moodlog/" + scratch + "/" + filename, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Close()
}
