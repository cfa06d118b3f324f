package server

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/upload"
)

// MaxUploadMemory bounds the multipart form kept in memory; larger parts
// spill to temporary files.
const MaxUploadMemory = 32 << 20

type fileResultJSON struct {
	Name    string         `json:"name"`
	Key     string         `json:"key,omitempty"`
	Outcome upload.Outcome `json:"outcome"`
	Error   string         `json:"error,omitempty"`
}

type uploadResultJSON struct {
	Files     []fileResultJSON `json:"files"`
	Persisted bool             `json:"persisted"`
}

func (s *Server) pipelineFor(resource string) (*upload.Pipeline, bool) {
	if s.deps.Presigner == nil || s.deps.Uploader == nil || s.deps.Persister == nil {
		return nil, false
	}
	return upload.New(
		s.deps.Presigner,
		s.deps.Uploader,
		s.deps.Persister(resource),
		upload.WithLogger(s.logger),
		upload.WithConcurrency(s.uploadConcurrency),
	), true
}

// handleUpload runs one presigned upload batch for the record in the path.
// The response lists each file outcome; a missing slot answers 422 with the
// partial result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sch := schemaFrom(r)
	id := chi.URLParam(r, "id")

	pipeline, ok := s.pipelineFor(resourceOf(sch))
	if !ok {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": adminerr.NewAPI(http.StatusServiceUnavailable, "파일 업로드가 설정되지 않았습니다"),
		})
		return
	}
	if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
		s.writeError(w, adminerr.NewValidation("files", adminerr.CodeInvalidRequest, "파일을 읽지 못했습니다").WithCause(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, adminerr.NewValidation("files", adminerr.CodeRequired, "업로드할 파일을 선택해 주세요"))
		return
	}
	req := upload.Request{
		ParentID:       id,
		Classification: r.FormValue("classification"),
		Files:          make([]upload.File, 0, len(headers)),
	}
	for _, fh := range headers {
		req.Files = append(req.Files, upload.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open:        multipartOpener(fh.Open),
		})
	}

	var result upload.Result
	err := s.deps.App.Boundary(r.Context(), "upload "+sch.Entity, func(ctx context.Context) error {
		var err error
		result, err = pipeline.Run(ctx, req)
		return err
	})

	body := uploadResultJSON{Files: make([]fileResultJSON, 0, len(result.Files)), Persisted: result.Persisted}
	for _, file := range result.Files {
		entry := fileResultJSON{Name: file.Name, Key: file.Key, Outcome: file.Outcome}
		if file.Err != nil {
			entry.Error = adminerr.UserMessage(file.Err)
		}
		body.Files = append(body.Files, entry)
	}

	if err != nil {
		var missing *upload.MissingSlotError
		typed, ok := adminerr.As(err)
		switch {
		case errors.As(err, &missing):
			typed = missing.Precondition()
		case !ok:
			typed = adminerr.NewAPI(http.StatusBadGateway, adminerr.UserMessage(err)).WithCause(err)
		}
		status := statusFor(typed)
		if missing != nil {
			status = http.StatusUnprocessableEntity
		}
		s.writeJSON(w, status, map[string]any{"data": body, "error": typed})
		return
	}

	s.logger.Info("upload finished",
		zap.String("entity", sch.Entity),
		zap.String("id", id),
		zap.Int("uploaded", len(result.Uploaded())),
		zap.Int("failed", len(result.Failed())),
	)
	if len(result.Failed()) == 0 {
		s.deps.App.Notifier().Info(MsgUploaded)
	} else {
		s.deps.App.Notifier().Warn(MsgUploadPartial)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": body})
}

func multipartOpener(open func() (multipart.File, error)) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := open()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
