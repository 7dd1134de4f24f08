package utils

import (
	"fmt"
	"mime/multipart"
	"reflect"
	"strings"
	"sync"

	"trendscope-backend/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// AllowedImageContentTypes is the set of allowed content types for image uploads.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MaxUploadSize is the maximum allowed file size for uploads (5MB).
const MaxUploadSize = 5 << 20

// FieldIssue is one itemized validation failure, keyed by the JSON path of the field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	validateOnce sync.Once
	standalone   *validator.Validate
)

// ValidateFileUpload checks that the uploaded file has a valid image content type
// and does not exceed the maximum file size.
func ValidateFileUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of 5MB", fh.Size)
	}

	contentType := fh.Header.Get("Content-Type")
	if !AllowedImageContentTypes[contentType] {
		return fmt.Errorf("invalid file type '%s'; allowed types: image/jpeg, image/png, image/webp, image/gif", contentType)
	}

	return nil
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func colorHex(fl validator.FieldLevel) bool {
	return models.ValidHex(fl.Field().String())
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	// The built-in hexcolor also admits #RGBA and #RRGGBBAA.
	_ = v.RegisterValidation("colorhex", colorHex)
}

// RegisterValidators installs the custom tags on gin's binding engine so that
// ShouldBindJSON understands them too.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Validator returns the standalone validator used outside of gin binding
// (bulk import, CLI). It reads the same `binding` tags as gin.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		standalone = validator.New()
		standalone.SetTagName("binding")
		configure(standalone)
	})
	return standalone
}

func ValidateStruct(v interface{}) error {
	return Validator().Struct(v)
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "colorhex":
		return "must be a hex color like #RGB or #RRGGBB"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// fieldPath drops the root struct name from the validator namespace,
// e.g. "BulkPayload.categories[0].slug" becomes "categories[0].slug".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return strings.ToLower(fe.Field())
}

// ValidationIssues itemizes a validator error. Errors of any other kind yield a
// single issue on the request body.
func ValidationIssues(err error) []FieldIssue {
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldIssue{{Field: "body", Message: "is not valid JSON for this request"}}
	}

	issues := make([]FieldIssue, 0, len(validationErrors))
	for _, fe := range validationErrors {
		issues = append(issues, FieldIssue{Field: fieldPath(fe), Message: issueMessage(fe)})
	}
	return issues
}

// SanitizeValidationError takes a validator error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s %s", strings.ToLower(fe.Field()), issueMessage(fe)))
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}
