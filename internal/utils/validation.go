package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

// ParseSkills splits a comma separated list, trimming blanks and dropping
// empty or repeated entries.
func ParseSkills(raw string) []string {
	return CleanSkills(strings.Split(raw, ","))
}

// CleanSkills trims every entry and drops empty or repeated ones. Entries are
// never split further.
func CleanSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	seen := make(map[string]bool)
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		cleaned = append(cleaned, s)
	}
	return cleaned
}

// EscapeLike escapes the LIKE wildcards so s is matched literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ValidateResumeFile checks the file extension and returns the normalized
// extension with its content type.
func ValidateResumeFile(filename string) (ext string, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(filename))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return "", "", errors.New("only .pdf, .doc and .docx files are allowed")
	}
	return ext, contentType, nil
}
