package utils

import (
	"errors"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestSanitizeValidationErrorEmail(t *testing.T) {
	// Simulate a validator.ValidationErrors for an email field
	validate := validator.New()

	type TestReq struct {
		Email string `validate:"required,email"`
	}

	err := validate.Struct(TestReq{Email: "not-an-email"})
	if err == nil {
		t.Fatal("expected validation error for invalid email")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "email") {
		t.Errorf("expected error message to mention email, got: %s", msg)
	}
	if !strings.Contains(msg, "valid email address") {
		t.Errorf("expected user-friendly email error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorRequired(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Name     string `validate:"required"`
		Password string `validate:"required,min=8"`
	}

	err := validate.Struct(TestReq{})
	if err == nil {
		t.Fatal("expected validation error for missing required fields")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "required") {
		t.Errorf("expected error message to mention 'required', got: %s", msg)
	}
}

func TestSanitizeValidationErrorNilReturnsEmpty(t *testing.T) {
	msg := SanitizeValidationError(nil)
	if msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorMinLength(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Password string `validate:"required,min=8"`
	}

	err := validate.Struct(TestReq{Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "at least") {
		t.Errorf("expected min length message, got: %s", msg)
	}
}

func TestValidateFileUploadValidJPEG(t *testing.T) {
	header := &multipart.FileHeader{
		Filename: "test.jpg",
		Size:     1024,
		Header:   make(textproto.MIMEHeader),
	}
	header.Header.Set("Content-Type", "image/jpeg")

	err := ValidateFileUpload(header)
	if err != nil {
		t.Errorf("expected no error for valid JPEG, got: %v", err)
	}
}

func TestValidateFileUploadTooLarge(t *testing.T) {
	header := &multipart.FileHeader{
		Filename: "huge.jpg",
		Size:     10 << 20, // 10MB
		Header:   make(textproto.MIMEHeader),
	}
	header.Header.Set("Content-Type", "image/jpeg")

	err := ValidateFileUpload(header)
	if err == nil {
		t.Error("expected error for file exceeding max size")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("expected size error, got: %v", err)
	}
}

func TestValidateFileUploadInvalidType(t *testing.T) {
	header := &multipart.FileHeader{
		Filename: "document.pdf",
		Size:     1024,
		Header:   make(textproto.MIMEHeader),
	}
	header.Header.Set("Content-Type", "application/pdf")

	err := ValidateFileUpload(header)
	if err == nil {
		t.Error("expected error for invalid file type")
	}
	if !strings.Contains(err.Error(), "invalid file type") {
		t.Errorf("expected content type error, got: %v", err)
	}
}

func TestValidateFileUploadAllowedTypes(t *testing.T) {
	allowedTypes := []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

	for _, ct := range allowedTypes {
		header := &multipart.FileHeader{
			Filename: "test.img",
			Size:     1024,
			Header:   make(textproto.MIMEHeader),
		}
		header.Header.Set("Content-Type", ct)

		err := ValidateFileUpload(header)
		if err != nil {
			t.Errorf("expected no error for content type %s, got: %v", ct, err)
		}
	}
}

func TestValidatorUsesBindingTagsAndJSONNames(t *testing.T) {
	type color struct {
		Name string `json:"name" binding:"required"`
		Hex  string `json:"hex" binding:"required,colorhex"`
	}
	type payload struct {
		Colors []color `json:"colors" binding:"dive"`
	}

	err := ValidateStruct(payload{Colors: []color{{Name: "Cobalt", Hex: "#0047AB"}, {Hex: "#GGGGGG"}}})
	if err == nil {
		t.Fatal("expected validation error")
	}

	issues := ValidationIssues(err)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	fields := map[string]string{}
	for _, issue := range issues {
		fields[issue.Field] = issue.Message
	}
	if fields["colors[1].name"] != "is required" {
		t.Errorf("expected required issue on colors[1].name, got %+v", issues)
	}
	if !strings.Contains(fields["colors[1].hex"], "hex color") {
		t.Errorf("expected hex issue on colors[1].hex, got %+v", issues)
	}
}

func TestColorHexTag(t *testing.T) {
	type req struct {
		Hex string `json:"hex" binding:"colorhex"`
	}
	for _, hex := range []string{"#ABC", "#AABBCC"} {
		if err := ValidateStruct(req{Hex: hex}); err != nil {
			t.Errorf("expected %s to be accepted, got %v", hex, err)
		}
	}
	for _, hex := range []string{"#AABBC", "ABCDEF", "#GGGGGG", "#ABCD"} {
		if err := ValidateStruct(req{Hex: hex}); err == nil {
			t.Errorf("expected %s to be rejected", hex)
		}
	}
}

func TestValidationIssuesNonValidatorError(t *testing.T) {
	issues := ValidationIssues(errors.New("invalid character 'x'"))
	if len(issues) != 1 || issues[0].Field != "body" {
		t.Errorf("expected a single body issue, got %+v", issues)
	}
	if ValidationIssues(nil) != nil {
		t.Error("expected nil issues for nil error")
	}
}
