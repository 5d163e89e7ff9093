package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig holds configuration for file-based log output with rotation.
type FileConfig struct {
	Path      string
	MaxSizeMB int
	MaxFiles  int
}

const defaultLogPath = "./logs/newsmail.log"

// NewFileWriter returns an io.Writer backed by a lumberjack rotating file.
// Rotated files are gzip-compressed.
func NewFileWriter(cfg FileConfig) io.Writer {
	path := cfg.Path
	if path == "" {
		path = defaultLogPath
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
		Compress:   true,
	}
}
