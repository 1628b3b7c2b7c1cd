// Package encoding provides text helpers for wow.export OBJ/MTL/CSV files.
package encoding

import (
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var folder = cases.Fold()

// DecodeToken converts a raw token to a UTF-8 string.
// Exports are UTF-8; tokens that are not valid UTF-8 were written by older
// Windows tooling and are decoded as Windows-1252.
func DecodeToken(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FoldName returns the case-folded form of a name, for case-insensitive
// ordering and comparison.
func FoldName(name string) string {
	return folder.String(name)
}

// NormalizePath converts a path written by the exporter into a slash
// separated path relative to the referencing file's directory.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// JoinPath joins a relative export path onto a directory inside an fs.FS.
func JoinPath(dir, rel string) string {
	rel = NormalizePath(rel)
	if dir == "" || dir == "." {
		return rel
	}
	return path.Join(dir, rel)
}

// Basename returns the last element of an export path.
func Basename(p string) string {
	return path.Base(strings.ReplaceAll(p, "\\", "/"))
}

// TrimExt removes the extension from a file name.
func TrimExt(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[:idx]
	}
	return name
}
