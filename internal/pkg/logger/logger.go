package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It is a no-op until Initialize runs so
// packages can log from tests without setup.
var Log *zap.Logger = zap.NewNop()

// Initialize builds the logger for the given APP_MODE
func Initialize(mode string) error {
	var (
		l   *zap.Logger
		err error
	)

	if mode == "prod" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	Log = l
	return nil
}

// Sync flushes buffered entries
func Sync() {
	_ = Log.Sync()
}

// MaskEmail keeps the first character of the local part.
// Example: john.doe@gmail.com -> j***@gmail.com
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	if parts[0] == "" {
		return "***@" + parts[1]
	}
	return parts[0][:1] + "***@" + parts[1]
}

// MaskPhone keeps the last four digits.
// Example: 3001234567 -> ******4567
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
