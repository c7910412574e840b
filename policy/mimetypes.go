package policy

import "strings"

// extensionTypes maps lower-case extensions to their canonical MIME type.
// Entries follow the IANA registrations used by the mime-db project. This
// table is the whole lookup: extensions missing here are unknown everywhere.
var extensionTypes = map[string]string{
	"7z":   "application/x-7z-compressed",
	"avif": "image/avif",
	"bmp":  "image/bmp",
	"css":  "text/css",
	"csv":  "text/csv",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"flac": "audio/x-flac",
	"gif":  "image/gif",
	"gz":   "application/gzip",
	"heic": "image/heic",
	"htm":  "text/html",
	"html": "text/html",
	"ico":  "image/x-icon",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "application/javascript",
	"json": "application/json",
	"m4a":  "audio/mp4",
	"md":   "text/markdown",
	"mjs":  "application/javascript",
	"mov":  "video/quicktime",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ogg":  "audio/ogg",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"rar":  "application/vnd.rar",
	"rtf":  "application/rtf",
	"svg":  "image/svg+xml",
	"tar":  "application/x-tar",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"tsv":  "text/tab-separated-values",
	"txt":  "text/plain",
	"wasm": "application/wasm",
	"wav":  "audio/wav",
	"webm": "video/webm",
	"webp": "image/webp",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xml":  "application/xml",
	"yaml": "text/yaml",
	"yml":  "text/yaml",
	"zip":  "application/zip",
}

// TypeByExtension returns the canonical MIME type for ext, which may carry a
// leading dot and any case. Only the built-in table is consulted, so the
// result does not depend on the host's mime.types files. It returns "" for
// unknown extensions.
func TypeByExtension(ext string) string {
	return extensionTypes[NormalizeExtension(ext)]
}

// TypeByFilename returns the canonical MIME type for the extension of name,
// or "" when name has no known extension.
func TypeByFilename(name string) string {
	// Both separators are stripped so Windows-style names behave the same.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ""
	}
	return TypeByExtension(name[dot+1:])
}

// NormalizeExtension lower-cases ext and removes surrounding space and any
// leading dots.
func NormalizeExtension(ext string) string {
	return strings.TrimLeft(strings.ToLower(strings.TrimSpace(ext)), ".")
}
