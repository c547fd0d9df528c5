package api

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/artpar/deployguard/internal/core/descriptor"
)

// =============================================================================
// Descriptor Upload
// =============================================================================

// FormField is the multipart field carrying the descriptor file.
const FormField = "config_file"

// DefaultMaxUploadBytes caps the request body of POST /deploy.
const DefaultMaxUploadBytes = 1 << 20

// uploadError is a caller-facing rejection of the upload itself.
type uploadError struct {
	status  int
	message string
	code    string
}

func (e *uploadError) Error() string { return e.message }

// readDescriptor decodes the descriptor from either a multipart upload or a
// raw JSON/YAML body. Everything is read in memory; nothing touches disk.
func (h *Handler) readDescriptor(w http.ResponseWriter, r *http.Request) (descriptor.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.readMultipart(r)
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, readError(err)
	}
	doc, err := descriptor.DecodeContentType(r.Header.Get("Content-Type"), content)
	if err != nil {
		return nil, decodeError(err)
	}
	return doc, nil
}

func (h *Handler) readMultipart(r *http.Request) (descriptor.Document, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, &uploadError{http.StatusBadRequest, "invalid multipart body", CodeMissingFile}
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, &uploadError{http.StatusBadRequest, "No file provided", CodeMissingFile}
		}
		if err != nil {
			return nil, readError(err)
		}
		if part.FormName() != FormField {
			_ = part.Close()
			continue
		}

		filename := part.FileName()
		if filename == "" {
			return nil, &uploadError{http.StatusBadRequest, "No file selected", CodeMissingFile}
		}
		if !h.deployer.Policy().AllowsFile(filename) {
			return nil, &uploadError{http.StatusBadRequest, "Invalid file type", CodeInvalidFileType}
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return nil, readError(err)
		}
		doc, err := descriptor.Decode(filename, content)
		if err != nil {
			return nil, decodeError(err)
		}
		return doc, nil
	}
}

func readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &uploadError{http.StatusRequestEntityTooLarge, "upload too large", CodePayloadTooLarge}
	}
	return &uploadError{http.StatusBadRequest, "failed to read request body", CodeInvalidDescriptor}
}

func decodeError(err error) error {
	if errors.Is(err, descriptor.ErrUnsupportedFormat) {
		return &uploadError{http.StatusBadRequest, err.Error(), CodeUnsupportedFormat}
	}
	return &uploadError{http.StatusBadRequest, err.Error(), CodeInvalidDescriptor}
}
