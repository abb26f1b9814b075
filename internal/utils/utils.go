package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
)

var Log = logrus.New()

func SetLogLevel(level string) {
	// We are not using logrus' trace and panic levels
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(log.DebugLevel)
	case "info":
		Log.SetLevel(log.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(log.WarnLevel)
	case "error":
		Log.SetLevel(log.ErrorLevel)
	case "fatal":
		Log.SetLevel(log.FatalLevel)
	default:
		log.Fatal("Bad error level string")
	}
}

// EnsureDir creates dir (and parents) if it doesn't exist yet.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SanitizeFilename replaces characters that are unsafe in filenames on
// common filesystems. DAT system names regularly contain slashes and colons
// ("Sony - PlayStation 3 (PSN)" is fine, "NEC - PC-98... / ..." is not).
func SanitizeFilename(name string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ":", " -", "*", "", "?", "", "\"", "'", "<", "(", ">", ")", "|", "-")
	return strings.TrimSpace(r.Replace(name))
}
