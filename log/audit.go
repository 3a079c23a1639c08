package log

import "strings"

// Audit records a user action. Failed actions (suffix _FAILED) are logged
// at WARN, everything else at INFO.
func Audit(action string, fields Fields) {
	entry := Logger.WithField("action", action).WithFields(fields)
	if strings.HasSuffix(action, "_FAILED") {
		entry.Warn("audit")
		return
	}
	entry.Info("audit")
}
