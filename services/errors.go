package services

import (
	"strings"

	"trendscope-backend/utils"

	"github.com/pkg/errors"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrCycle                 = errors.New("category cannot become its own ancestor")
	ErrCategoryNotEmpty      = errors.New("category has subcategories or trends")
	ErrMaintenanceInProgress = errors.New("another bulk operation is in progress")
)

// ValidationError is a client-side input problem. Issues itemizes the
// offending fields when they are known.
type ValidationError struct {
	Message string
	Issues  []utils.FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func NewValidationError(message string, issues ...utils.FieldIssue) *ValidationError {
	return &ValidationError{Message: message, Issues: issues}
}

var hexIssue = utils.FieldIssue{Field: "hex", Message: "must be a hex color like #RGB or #RRGGBB"}
