package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
)

// FormFile is one multipart upload. Close releases the temp storage.
type FormFile struct {
	File        multipart.File
	Name        string
	ContentType string
	Size        int64
	form        *multipart.Form
}

func (f *FormFile) Close() error {
	if f == nil {
		return nil
	}
	err := f.File.Close()
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
	return err
}

// ReadFormFile caps the request body at maxBytes and opens field. Oversized
// bodies yield PAYLOAD_TOO_LARGE.
func ReadFormFile(w http.ResponseWriter, r *http.Request, field string, maxBytes, maxMemory int64) (*FormFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if maxMemory <= 0 || maxMemory > maxBytes {
		maxMemory = maxBytes
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, "file exceeds the upload limit").
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeFileRead, err, "could not read the uploaded form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").WithDetails(map[string]string{field: "is required"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeFileRead, err, "could not read the uploaded file")
	}
	return &FormFile{
		File:        file,
		Name:        filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		form:        r.MultipartForm,
	}, nil
}

// HasExtension reports whether name ends with one of exts (case-insensitive).
func HasExtension(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
