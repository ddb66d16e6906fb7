package constants

import "strings"

// DocumentExtensions holds the allowed extensions for identity-proof uploads.
var DocumentExtensions = map[string]struct{}{
	"pdf": {},
}

// PhotoExtensions holds the allowed extensions for member photo uploads.
var PhotoExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
