package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Level logrus.Level

const (
	PanicLevel = Level(logrus.PanicLevel)
	FatalLevel = Level(logrus.FatalLevel)
	ErrorLevel = Level(logrus.ErrorLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
	TraceLevel = Level(logrus.TraceLevel)
)

type Fields = logrus.Fields

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.Out = os.Stdout
	Logger.Formatter = &logrus.TextFormatter{
		DisableLevelTruncation: true,
		PadLevelText:           true,
		TimestampFormat:        "2006/01/02 15:04:05",
		FullTimestamp:          true,
	}
}

func SetLevel(level Level) {
	Logger.SetLevel(logrus.Level(level))
}

// UseJSON switches to one JSON object per line, for log collectors.
func UseJSON() {
	Logger.Formatter = &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

func WithFields(fields Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

func Log(level Level, args ...any) {
	Logger.Logln(logrus.Level(level), args...)
}

func Debugf(fmt string, args ...any) {
	Logger.Debugf(fmt, args...)
}
func Info(args ...any) {
	Logger.Infoln(args...)
}

func Warnf(fmt string, args ...any) {
	Logger.Warnf(fmt, args...)
}

func Errorf(fmt string, args ...any) {
	Logger.Errorf(fmt, args...)
}
func Error(args ...any) {
	Logger.Errorln(args...)
}

func Fatal(args ...any) {
	Logger.Fatalln(args...)
}

