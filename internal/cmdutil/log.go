package cmdutil

import "github.com/sirupsen/logrus"

// Warnf emits a warning through log unless quiet is set. log may be nil,
// in which case the warning is dropped; cmd/ entry points pass a logger
// attached to os.Stderr so every warning lands there by default.
func Warnf(log *logrus.Logger, quiet bool, format string, a ...any) {
	if quiet || log == nil {
		return
	}
	log.Warnf(format, a...)
}
