package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

// Init sets up the global logger writing to stdout and a dated file under logDir.
func Init(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("slicebot_%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(f), zapcore.InfoLevel),
	)

	sugar = zap.New(core, zap.AddCallerSkip(1)).Sugar()
	return nil
}

func Info(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Infof(format, v...)
	} else {
		log.Printf("[INFO] "+format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if sugar != nil {
		sugar.Errorf(format, v...)
	} else {
		log.Printf("[ERROR] "+format, v...)
	}
}

func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
