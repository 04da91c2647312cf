// Package upload 将上传文件写入本地公开目录，并返回可访问的 URL 路径。
package upload

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"talento/internal/apperr"

	"github.com/gabriel-vasile/mimetype"
)

// 允许的文件类型。
var (
	Documents = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
	Images = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
)

const (
	msgEmpty    = "Файл оруулна уу"
	msgTooLarge = "Файлын хэмжээ 10MB-аас ихгүй байх ёстой"
	msgDocType  = "Зөвхөн Word (.doc/.docx) эсвэл PDF файл оруулна уу"
	msgImgType  = "Зөвхөн зураг (PNG, JPEG, GIF, WEBP) оруулна уу"
)

var unsafeChars = regexp.MustCompile(`[^\w.\-()\s]`)

// Config 上传目录配置。
type Config struct {
	Dir       string `yaml:"dir" json:"dir"`
	URLPrefix string `yaml:"url_prefix" json:"url_prefix"`
	MaxBytes  int64  `yaml:"max_bytes" json:"max_bytes"`
}

// File 已保存的文件。
type File struct {
	Name string `json:"fileName"`
	URL  string `json:"fileUrl"`
	Path string `json:"-"`
	MIME string `json:"mimeType"`
	Data []byte `json:"-"`
}

// Store 写入本地文件系统。
type Store struct {
	cfg Config
	now func() time.Time
}

// New 创建 Store，目录默认 public/uploads，上限默认 10MB。
func New(cfg Config) *Store {
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join("public", "uploads")
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/uploads"
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	return &Store{cfg: cfg, now: time.Now}
}

// Dir 返回根目录，供静态文件服务使用。
func (s *Store) Dir() string { return s.cfg.Dir }

// URLPrefix 返回对外 URL 前缀。
func (s *Store) URLPrefix() string { return s.cfg.URLPrefix }

// Open 按 URL 打开已保存的文件。前缀不符或越出根目录的路径返回 os.ErrNotExist。
func (s *Store) Open(fileURL string) (*os.File, error) {
	prefix := path.Clean("/"+s.cfg.URLPrefix) + "/"
	rel, ok := strings.CutPrefix(path.Clean("/"+fileURL), prefix)
	if !ok || rel == "" {
		return nil, fmt.Errorf("open upload %q: %w", fileURL, os.ErrNotExist)
	}
	return os.Open(filepath.Join(s.cfg.Dir, filepath.FromSlash(rel)))
}

// SaveDocument 保存 PDF / Word 文件。
func (s *Store) SaveDocument(subdir, name string, r io.Reader) (*File, error) {
	return s.save(subdir, name, r, Documents, msgDocType)
}

// SaveImage 保存图片文件。
func (s *Store) SaveImage(subdir, name string, r io.Reader) (*File, error) {
	return s.save(subdir, name, r, Images, msgImgType)
}

func (s *Store) save(subdir, name string, r io.Reader, allowed []string, typeMsg string) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperr.Validation(msgEmpty)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, apperr.Validation(msgTooLarge)
	}

	mt := mimetype.Detect(data)
	if !accepts(mt, allowed) {
		return nil, apperr.Validation(typeMsg)
	}

	dir := filepath.Join(s.cfg.Dir, filepath.FromSlash(subdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	fileName := fmt.Sprintf("%d-%s", s.now().UnixMilli(), SafeName(name))
	full := filepath.Join(dir, fileName)
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &File{
		Name: name,
		URL:  path.Join(s.cfg.URLPrefix, subdir, fileName),
		Path: full,
		MIME: mt.String(),
		Data: data,
	}, nil
}

// SafeName 去掉目录部分与非常规字符。
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	safe := strings.TrimSpace(unsafeChars.ReplaceAllString(base, ""))
	if safe == "" || safe == "." || safe == ".." {
		return "file"
	}
	return safe
}

func accepts(mt *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if mt.Is(a) {
			return true
		}
	}
	return false
}
