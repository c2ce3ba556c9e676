package http

import (
	"errors"
	"mime/multipart"
	"net/http"
)

// multipartMemory is how much of a form is held in memory before the rest
// spills to temp files.
const multipartMemory = 1 << 20

var errUpload = errors.New("invalid upload")

// parseUpload parses a multipart body capped at maxBytes and opens the file
// under field. The returned cleanup closes the file and removes any spilled
// temp files; call it on every path.
func parseUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (multipart.File, func(), error) {
	// Leave room for the multipart envelope and plain fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
		return nil, func() {}, errUpload
	}

	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	f, _, err := r.FormFile(field)
	if err != nil {
		cleanup()
		return nil, func() {}, errUpload
	}

	return f, func() {
		_ = f.Close()
		cleanup()
	}, nil
}
