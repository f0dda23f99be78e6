package services

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"jobboard-api/internal/storage"
)

// mapRepoError maps storage errors to service errors. notFound replaces
// storage.ErrNotFound so callers get a message naming the missing entity.
func mapRepoError(logger *zap.Logger, err error, operation string, notFound error) error {
	if errors.Is(err, storage.ErrNotFound) {
		if notFound != nil {
			return notFound
		}
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return ErrDuplicateEmail
	}
	if errors.Is(err, storage.ErrConflict) {
		logger.Info("Repository conflict", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("%w: %s", ErrConflict, operation)
	}
	// Log other unexpected errors
	logger.Error("Unexpected repository error", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("internal error during %s: %w", operation, err)
}

// formatBytes renders a byte count the way upload limits are usually quoted.
func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit && n%(unit*unit) == 0:
		return fmt.Sprintf("%dMB", n/(unit*unit))
	case n >= unit && n%unit == 0:
		return fmt.Sprintf("%dKB", n/unit)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// resumeKey names a resume after its applicant and job: whitespace runs
// become dashes and path separators are removed.
func resumeKey(applicantName, jobID, ext string) string {
	name := strings.Join(strings.Fields(applicantName), "-")
	name = strings.NewReplacer("/", "-", `\`, "-").Replace(name)
	if name == "" || name == "." || name == ".." {
		name = "applicant"
	}
	return name + "_" + jobID + ext
}
