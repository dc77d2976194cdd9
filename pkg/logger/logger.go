package logger

import (
	"os"

	"github.com/ErzenXz/monolith/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the app-wide logging contract; a zap.SugaredLogger sits behind
// it.
type Logger interface {
	InitLogger()
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(template string, args ...interface{})
}

type apiLogger struct {
	cfg         *config.Config
	sugarLogger *zap.SugaredLogger
}

func NewApiLogger(cfg *config.Config) *apiLogger {
	return &apiLogger{cfg: cfg}
}

var loggerLevelMap = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"info":   zapcore.InfoLevel,
	"warn":   zapcore.WarnLevel,
	"error":  zapcore.ErrorLevel,
	"dpanic": zapcore.DPanicLevel,
	"panic":  zapcore.PanicLevel,
	"fatal":  zapcore.FatalLevel,
}

func (l *apiLogger) getLoggerLevel(cfg *config.Config) zapcore.Level {
	level, exist := loggerLevelMap[cfg.Logger.Level]
	if !exist {
		return zapcore.DebugLevel
	}
	return level
}

func (l *apiLogger) InitLogger() {
	logLevel := l.getLoggerLevel(l.cfg)

	logWriter := zapcore.AddSync(os.Stderr)

	var encoderCfg zapcore.EncoderConfig
	if l.cfg.Logger.Development {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
	} else {
		encoderCfg = zap.NewProductionEncoderConfig()
	}

	var encoder zapcore.Encoder
	encoderCfg.LevelKey = "LEVEL"
	encoderCfg.CallerKey = "CALLER"
	encoderCfg.TimeKey = "TIME"
	encoderCfg.NameKey = "NAME"
	encoderCfg.MessageKey = "MESSAGE"

	if l.cfg.Logger.Encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(encoder, logWriter, zap.NewAtomicLevelAt(logLevel))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	l.sugarLogger = logger.Sugar()
}

func (l *apiLogger) Debug(args ...interface{})                   { l.sugarLogger.Debug(args...) }
func (l *apiLogger) Debugf(template string, args ...interface{}) { l.sugarLogger.Debugf(template, args...) }
func (l *apiLogger) Info(args ...interface{})                    { l.sugarLogger.Info(args...) }
func (l *apiLogger) Infof(template string, args ...interface{})  { l.sugarLogger.Infof(template, args...) }
func (l *apiLogger) Warn(args ...interface{})                    { l.sugarLogger.Warn(args...) }
func (l *apiLogger) Warnf(template string, args ...interface{})  { l.sugarLogger.Warnf(template, args...) }
func (l *apiLogger) Error(args ...interface{})                   { l.sugarLogger.Error(args...) }
func (l *apiLogger) Errorf(template string, args ...interface{}) { l.sugarLogger.Errorf(template, args...) }
func (l *apiLogger) Fatal(args ...interface{})                   { l.sugarLogger.Fatal(args...) }
func (l *apiLogger) Fatalf(template string, args ...interface{}) { l.sugarLogger.Fatalf(template, args...) }
