package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfig     = errors.New("configuration error")
	ErrConnection = errors.New("connection error")
	ErrCommand    = errors.New("remote command error")
	ErrTransfer   = errors.New("transfer error")
	ErrMerge      = errors.New("merge error")
	ErrUpload     = errors.New("upload error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrCommand
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a failed operation may be offered to the operator
// for another attempt. Only per-page remote command failures qualify; every
// other marker aborts the session.
func Retryable(err error) bool {
	return errors.Is(err, ErrCommand)
}

// Fatal reports whether an error must terminate the session. Upload failures
// are reported but leave the finished document intact.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrUpload)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
