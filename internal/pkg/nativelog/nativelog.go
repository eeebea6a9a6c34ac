package nativelog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogDir          = "LANDING_LOG_DIR"
	defaultLogFilePerm = 0o644
	defaultLogDirPerm  = 0o755
)

// ResolveDir picks the log directory: the explicit dir, then $LANDING_LOG_DIR,
// then ~/.landing/log, then ./logs.
func ResolveDir(dir string) string {
	if dir = strings.TrimSpace(dir); dir != "" {
		return dir
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogDir)); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".landing", "log")
	}
	return filepath.Join(".", "logs")
}

// DailyFilename returns the log filename for the day of now.
func DailyFilename(now time.Time) string {
	return "stdout_" + now.Format("2006-01-02") + ".log"
}

// Writer appends to one log file per day under dir.
type Writer struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewWriter creates dir when missing.
func NewWriter(dir string) (*Writer, error) {
	dir = ResolveDir(dir)
	if err := os.MkdirAll(dir, defaultLogDirPerm); err != nil {
		return nil, err
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// Dir is the resolved directory the writer appends to.
func (w *Writer) Dir() string { return w.dir }

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	path := filepath.Join(w.dir, DailyFilename(w.now()))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, defaultLogFilePerm)
	if err != nil {
		return 0, err
	}

	n, writeErr := file.Write(p)
	closeErr := file.Close()
	if writeErr != nil {
		return n, writeErr
	}
	return n, closeErr
}

func (w *Writer) Sync() error {
	return nil
}

// NewZapLogger tees console output to stdout and the daily file under dir.
// debug lowers the level to Debug.
func NewZapLogger(dir string, debug bool) (*zap.Logger, error) {
	writer, err := NewWriter(dir)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(encoder, zapcore.AddSync(writer), level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	_ = zap.RedirectStdLog(logger)
	return logger, nil
}
