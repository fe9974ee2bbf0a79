package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger 创建决策引擎日志
// level: zap 级别名（"debug", "info", "warn", "error"），无法识别时为 info
// format: "console" 为开发格式，其余为 JSON
// serviceName: 服务名称（如 "acdss"），为空时不添加
//
// 日志统一写 stderr，stdout 只输出分析结果
func NewLogger(level string, format string, serviceName string) (*zap.Logger, error) {
	config := baseConfig(format)
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return nil, err
	}

	fields := make([]zap.Field, 0, 2)
	if serviceName != "" {
		fields = append(fields, zap.String("service_name", serviceName))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		fields = append(fields, zap.String("hostname", hostname))
	}
	return l.With(fields...), nil
}

func baseConfig(format string) zap.Config {
	if format == "console" {
		return zap.NewDevelopmentConfig()
	}
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config
}

func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil || l > zapcore.ErrorLevel {
		return zapcore.InfoLevel
	}
	return l
}
