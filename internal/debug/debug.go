package debug

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//
// Debug output is controlled by the SEEKERDEBUG environment variable, which
// can be a list of labels (e.g., "WORKER;COORD").
//

const (
	ALWAYS = "STATUS"
	WORKER = "WORKER"
	COORD  = "COORD"
	DEVICE = "DEVICE"
	REPORT = "REPORT"
)

const envVar = "SEEKERDEBUG"

var (
	logger *zap.SugaredLogger
	labels map[string]bool
)

func init() {
	labels = parseLabels(os.Getenv(envVar))
	logger = newLogger()
}

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	l, err := cfg.Build()
	if err != nil {
		// Fall back to a logger that never fails to build.
		l = zap.NewExample()
	}
	return l.Sugar()
}

func parseLabels(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, l := range strings.Split(s, ";") {
		l = strings.TrimSpace(l)
		if l != "" {
			m[l] = true
		}
	}
	return m
}

// IsLabelSet reports whether output for label is enabled.
func IsLabelSet(label string) bool {
	return label == ALWAYS || labels[label]
}

func DPrintf(label string, format string, v ...interface{}) {
	if IsLabelSet(label) {
		logger.Infof("%v %v", label, fmt.Sprintf(format, v...))
	}
}

// DWarnf always prints.
func DWarnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

func DFatalf(format string, v ...interface{}) {
	pc, file, line, ok := runtime.Caller(1)
	fnDetails := runtime.FuncForPC(pc)
	if ok && fnDetails != nil {
		logger.Fatalf("FATAL %v %v:%v %v", fnDetails.Name(), file, line, fmt.Sprintf(format, v...))
	} else {
		logger.Fatalf("FATAL (missing details) %v", fmt.Sprintf(format, v...))
	}
}

// Sync flushes buffered log output.
func Sync() {
	_ = logger.Sync()
}
