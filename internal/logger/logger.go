package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置。
type Config struct {
	JSON  bool `yaml:"json" json:"json"`
	Debug bool `yaml:"debug" json:"debug"`
}

// New 构建 zap logger，json 控制编码格式，debug 打开调试级别。
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if cfg.JSON {
		encoding = "json"
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	zcfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			NameKey: "component",

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	return zcfg.Build()
}

// OrNop 在未注入 logger 时返回空实现，组件内部无需判空。
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// Named 返回带组件名的子 logger。
func Named(l *zap.Logger, component string) *zap.Logger {
	return OrNop(l).Named(component)
}
