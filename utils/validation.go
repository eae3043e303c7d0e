package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedImageContentTypes lists what the draft upload endpoint accepts.
// The blob store serves these back verbatim, so only browser-renderable
// image types belong here.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MaxUploadSize caps a single image file at 5MB.
const MaxUploadSize = 5 << 20

// ValidateFileUpload gates a multipart file before it is read into memory:
// size first, then declared content type.
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

// SanitizeValidationError rewrites a binding error into messages safe to
// return to the client. Validator errors become per-field sentences keyed on
// the failed tag; anything else (malformed JSON, type mismatches) collapses
// to a generic message so Go struct internals never leak.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "Invalid request body"
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "email":
			messages = append(messages, field+" must be a valid email address")
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}
	return strings.Join(messages, "; ")
}
