package importer

import (
	"path"
	"regexp"
	"strings"
)

// illegalChars are characters not allowed in stored file names.
var illegalChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)

// multiSpace matches multiple consecutive spaces.
var multiSpace = regexp.MustCompile(`\s+`)

// SanitizeFileName reduces a client-supplied upload name to a safe base name
// for history records and logs. The extension is preserved.
func SanitizeFileName(name string) string {
	// Clients may send full paths with either separator
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	name = illegalChars.ReplaceAllString(name, " ")
	name = multiSpace.ReplaceAllString(name, " ")

	return strings.Trim(name, " ")
}
