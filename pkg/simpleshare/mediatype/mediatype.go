// Package mediatype resolves MIME types for stored files.
//
// Types served to clients come from the filename extension only, so an
// extension-less upload is always application/octet-stream whatever it
// contains. Detect reports what the leading bytes look like; it is used for
// upload logs and never decides a served type.
package mediatype

import (
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tendant/simple-share/pkg/simpleshare/filename"
)

// OctetStream is returned when no better type is known
const OctetStream = "application/octet-stream"

// extra covers common upload types missing from Go's builtin table, so results
// do not depend on the host's mime.types files.
var extra = map[string]string{
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".log":  "text/plain; charset=utf-8",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".7z":   "application/x-7z-compressed",
}

func init() {
	for ext, typ := range extra {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// TypeByName returns the MIME type for a filename based on its extension, or
// OctetStream when the extension is missing or unknown.
func TypeByName(name string) string {
	ext := filename.Extension(name)
	if ext == "" {
		return OctetStream
	}
	if typ := mime.TypeByExtension("." + ext); typ != "" {
		return typ
	}
	return OctetStream
}

// Detect sniffs the MIME type from the start of r. The result must not be used
// as a Content-Type.
func Detect(r io.Reader) (string, error) {
	m, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

// IsImage reports whether typ is an image type
func IsImage(typ string) bool {
	return strings.HasPrefix(typ, "image/")
}

// IsVideo reports whether typ is a video type
func IsVideo(typ string) bool {
	return strings.HasPrefix(typ, "video/")
}
