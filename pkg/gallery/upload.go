package gallery

import (
	"encoding/base64"
	"io"
	"net/http"
)

// MaxUploadSize is the largest file the upload pipeline accepts: 5 MiB.
const MaxUploadSize int64 = 5 * 1024 * 1024

// Source describes a file the operator selected for upload.
type Source struct {
	// Filename is the original filename from the client.
	Filename string

	// ContentType is the declared MIME type. If empty, it is sniffed from
	// the decoded bytes.
	ContentType string

	// Size is the declared file size in bytes, validated against
	// MaxUploadSize before any decoding starts.
	Size int64

	// Reader provides the file contents.
	Reader io.Reader
}

// decode reads the source into a self-contained data URI and offers it to
// the pending slot. It runs on its own goroutine; version identifies the
// Select call it belongs to, so a stale decode cannot clobber a newer one.
func (g *Registry) decode(version uint64, src Source) {
	data, err := io.ReadAll(io.LimitReader(src.Reader, MaxUploadSize+1))
	if err != nil {
		g.logger.Error("upload decode failed", "filename", src.Filename, "error", err)
		return
	}

	// The declared size passed validation but the body may disagree.
	if int64(len(data)) > MaxUploadSize {
		g.tooLarge(src.Filename)
		return
	}

	contentType := src.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	uri := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	g.install(version, uri)
}

// install stages the decoded image, unless a newer Select has superseded
// this decode.
func (g *Registry) install(version uint64, dataURI string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if version != g.pendingVersion {
		g.logger.Debug("stale upload decode discarded", "version", version)
		return
	}
	g.pending = dataURI
	g.hasPending = true
}
