package storage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"hrportal_backend/internals/constants"
)

const (
	MaxDocumentSize     = int64(5 * 1024 * 1024)
	MaxTrainingFileSize = int64(25 * 1024 * 1024)
)

const (
	MsgFileTooLarge    = "File too large (max 5MB)"
	MsgDocumentTypeBad = "Only PDF, JPG, JPEG, PNG allowed"
	MsgTrainingTooBig  = "File too large (max 25MB)"
)

// ValidateDocument applies the biodata document rules: size <= 5MB and one of
// pdf/jpg/jpeg/png. Returns "" when the file is acceptable.
func ValidateDocument(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	if fh.Size > MaxDocumentSize {
		return MsgFileTooLarge
	}
	if !constants.HasAllowedExt(fh.Filename, constants.DocumentExtensions) {
		return MsgDocumentTypeBad
	}
	return ""
}

// ValidateExtension checks fh against an allow-list and builds the message
// listing the accepted extensions.
func ValidateExtension(fh *multipart.FileHeader, allowed []string) string {
	if fh == nil {
		return ""
	}
	if constants.HasAllowedExt(fh.Filename, allowed) {
		return ""
	}
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, strings.TrimPrefix(a, "."))
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	return fmt.Sprintf("File extension %q is not allowed. Allowed extensions are: %s.", ext, strings.Join(names, ", "))
}

// ValidateTrainingFile applies the size cap for submissions and materials
// plus the given extension allow-list.
func ValidateTrainingFile(fh *multipart.FileHeader, allowed []string) string {
	if fh == nil {
		return ""
	}
	if fh.Size > MaxTrainingFileSize {
		return MsgTrainingTooBig
	}
	return ValidateExtension(fh, allowed)
}
