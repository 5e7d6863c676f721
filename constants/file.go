package constants

import "strings"

// FileTypes holds the allowed values for the format column of document rows.
var FileTypes = []string{"PDF", "TXT", "JSON", "YAML"}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"json": {},
	"yaml": {},
	"yml":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileTypeForExt maps an extension to its FileTypes value, "" when unsupported.
func FileTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "PDF"
	case "txt":
		return "TXT"
	case "json":
		return "JSON"
	case "yaml", "yml":
		return "YAML"
	}
	return ""
}
