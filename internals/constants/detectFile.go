package constants

import (
	"path/filepath"
	"strings"
)

const (
	FileKindUnknown = iota
	FileKindImage
	FileKindPDF
	FileKindDocx
	FileKindArchive
	FileKindSource
)

func DetectFileTypeFromExt(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	case ".pdf":
		return FileKindPDF
	case ".doc", ".docx":
		return FileKindDocx
	case ".zip":
		return FileKindArchive
	case ".py":
		return FileKindSource
	default:
		return FileKindUnknown
	}
}

// Biodata documents: PDF or image scans.
var DocumentExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Assignment submissions.
var SubmissionExtensions = []string{".zip", ".pdf", ".py", ".docx", ".jpg", ".png"}

// Training materials.
var MaterialExtensions = []string{".pdf", ".docx", ".pptx", ".zip", ".jpg", ".png", ".mp4"}

func HasAllowedExt(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
