// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrNoFile           = errors.New("no file provided")
	ErrFileNameInvalid  = errors.New("invalid file name provided")
	ErrFileNameTooLong  = errors.New("file name is too long")
	ErrUnsupportedMedia = errors.New("unsupported media type, only video files are accepted")
)

// Leaves room for the trimmed_<uuid>_ prefix of saved copies
const maxFileNameSize = 200

var namePolicy = bluemonday.StrictPolicy()

// FileValidator checks an uploaded file and returns it opened and rewound
// to the start, together with its cleaned name. The size is not checked
// here, the upload service owns that rule
func FileValidator(fh *multipart.FileHeader) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	name, err := CleanFileName(fh.Filename)
	if err != nil {
		return http.StatusBadRequest, nil, "", err
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to open multipart file, %w", err)
	}

	// The Content-Type header is client controlled, sniff the bytes instead
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to detect media type, %w", err)
	}

	if !IsVideo(mime) {
		f.Close()
		return http.StatusUnprocessableEntity, nil, "", fmt.Errorf("%w (got %s)", ErrUnsupportedMedia, mime.String())
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", fmt.Errorf("failed to rewind multipart file, %w", err)
	}

	return 0, f, name, nil
}

// IsVideo reports whether m or one of its parents is a video type
func IsVideo(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "video/") {
			return true
		}
	}

	return false
}

// CleanFileName strips any directory part and markup from a client
// supplied file name
func CleanFileName(name string) (string, error) {
	name = html.UnescapeString(namePolicy.Sanitize(name))
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(filepath.Base(name))

	if name == "" || name == "." || name == "/" || name == ".." {
		return "", ErrFileNameInvalid
	}

	if len(name) > maxFileNameSize {
		return "", ErrFileNameTooLong
	}

	return name, nil
}
