package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedImageContentTypes is the set of allowed content types for image uploads.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AllowedImageExtensions mirrors the content type allow-list by file name.
var AllowedImageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MaxUploadSize is the maximum allowed file size for uploads (5MB).
const MaxUploadSize = 5 << 20

// ValidateFileUpload checks the size, extension and content type of an uploaded image.
func ValidateFileUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxUploadSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of 5MB", fh.Size)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !AllowedImageExtensions[ext] {
		return fmt.Errorf("invalid file extension '%s'; only image files are allowed (jpeg, jpg, png, gif, webp)", ext)
	}

	contentType := fh.Header.Get("Content-Type")
	if !AllowedImageContentTypes[contentType] {
		return fmt.Errorf("invalid file type '%s'; allowed types: image/jpeg, image/png, image/webp, image/gif", contentType)
	}

	return nil
}

// SanitizeValidationError takes a validator error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			if fe.Kind().String() == "string" {
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
			}
		case "max":
			if fe.Kind().String() == "string" {
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
			}
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be %s or greater", field, fe.Param()))
		case "lte":
			messages = append(messages, fmt.Sprintf("%s must be %s or less", field, fe.Param()))
		case "uuid", "uuid4":
			messages = append(messages, fmt.Sprintf("%s must be a valid id", field))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
