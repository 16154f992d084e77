package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controla nível, formato e destino dos logs.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // text ou json
	Output     string // stdout, file ou both
	Path       string // diretório dos arquivos
	MaxSize    int    // MB por arquivo antes de rotacionar
	MaxBackups int
	MaxAge     int // dias
	Compress   bool
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		Path:       "logs",
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex
	cfg       = DefaultConfig()
)

// Init aplica a configuração. Loggers já criados são descartados.
func Init(c Config) error {
	if c.Output == "file" || c.Output == "both" {
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return fmt.Errorf("criar diretório de logs: %w", err)
		}
	}
	loggersMu.Lock()
	defer loggersMu.Unlock()
	cfg = c
	loggers = make(map[string]*logrus.Logger)
	return nil
}

// Get devolve o logger nomeado (app, auth, audit...), criando na primeira chamada.
func Get(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := newLogger(name, cfg)
	loggers[name] = l
	return l
}

func App() *logrus.Logger { return Get("app") }

func newLogger(name string, c Config) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if c.Output == "file" || c.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(c.Path, name+".log"),
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		})
	}
	if c.Output != "file" {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
)

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func ContextWithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithContext anexa request_id e user_id, quando presentes, ao logger "app".
func WithContext(ctx context.Context) *logrus.Entry {
	return FromContext(App(), ctx)
}

func FromContext(l *logrus.Logger, ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if id := RequestID(ctx); id != "" {
		fields["request_id"] = id
	}
	if uid, ok := ctx.Value(userIDKey).(uint); ok && uid != 0 {
		fields["user_id"] = uid
	}
	return l.WithFields(fields)
}
