package logging

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const sessionStamp = "20060102_150405"

// SessionFile names a per-session output file in dir: the prefix, the
// session start and the suffix. Characters unsafe in file names are
// replaced in the prefix.
func SessionFile(dir, prefix, suffix string, start time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, prefix)
	return filepath.Join(dir, fmt.Sprintf("%s.%s%s", clean, start.Format(sessionStamp), suffix))
}

// LogFilePath is the session's text log.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return SessionFile(logsDir, name, ".log", sessionStart)
}
