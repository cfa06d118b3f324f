// Package upload sends files to object storage through presigned URLs.
//
// A run makes one batch presign call, uploads every file that received a slot
// in parallel, and finally posts the storage keys of the uploaded files back in
// one persist call. Files never block or cancel each other; each has its own
// recorded outcome.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-gridform/pkg/adminerr"
)

// File is one file to upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Slot is a presigned upload target for one file name.
type Slot struct {
	Name string `json:"fileName"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// Presigner issues presigned URLs for a batch of file names.
type Presigner interface {
	Presign(ctx context.Context, parentID string, names []string, classification string) ([]Slot, error)
}

// Uploader sends the bytes of file to a presigned slot.
type Uploader interface {
	Upload(ctx context.Context, slot Slot, file File) error
}

// Persister records the uploaded storage keys against the parent record.
type Persister interface {
	Persist(ctx context.Context, parentID string, keys []string, classification string) error
}

// Request describes one batch.
type Request struct {
	ParentID       string
	Classification string
	Files          []File
}

// Outcome is the final state of one file.
type Outcome string

const (
	OutcomeUploaded    Outcome = "uploaded"
	OutcomeFailed      Outcome = "failed"
	OutcomeMissingSlot Outcome = "missing_slot"
)

// FileResult is the outcome of one file.
type FileResult struct {
	Name    string
	Key     string
	Outcome Outcome
	Err     error
}

// Result reports every file of a batch in request order.
type Result struct {
	Files     []FileResult
	Persisted bool
}

// Uploaded returns the keys of the files that uploaded.
func (r Result) Uploaded() []string {
	var keys []string
	for _, file := range r.Files {
		if file.Outcome == OutcomeUploaded {
			keys = append(keys, file.Key)
		}
	}
	return keys
}

// Failed returns the files that did not upload, whatever the reason.
func (r Result) Failed() []FileResult {
	var failed []FileResult
	for _, file := range r.Files {
		if file.Outcome != OutcomeUploaded {
			failed = append(failed, file)
		}
	}
	return failed
}

// MissingSlotError is returned when the presign response lacks a slot for
// one or more files.
type MissingSlotError struct {
	Names []string
}

func (e *MissingSlotError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, name := range e.Names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return "upload: no presigned url for " + strings.Join(quoted, ", ")
}

// MsgMissingSlot is the user-facing text for a missing slot; %s lists the
// quoted file names.
const MsgMissingSlot = "업로드 주소를 받지 못한 파일이 있습니다: %s"

// Precondition converts the error into the admin taxonomy.
func (e *MissingSlotError) Precondition() *adminerr.Error {
	quoted := make([]string, len(e.Names))
	for i, name := range e.Names {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	return adminerr.NewPrecondition(adminerr.CodeMissingSlot, fmt.Sprintf(MsgMissingSlot, strings.Join(quoted, ", "))).
		WithDetail("files", append([]string(nil), e.Names...))
}

// Unwrap exposes the precondition so boundaries classify the refusal.
func (e *MissingSlotError) Unwrap() error { return e.Precondition() }

// Is lets errors.Is match any missing slot error against ErrMissingSlot.
func (e *MissingSlotError) Is(target error) bool {
	return target == ErrMissingSlot
}

// ErrMissingSlot matches every *MissingSlotError under errors.Is.
var ErrMissingSlot = errors.New("upload: missing presigned slot")

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithConcurrency caps the number of uploads in flight. Zero means no limit.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n >= 0 {
			p.concurrency = n
		}
	}
}

// Pipeline runs upload batches.
type Pipeline struct {
	presigner   Presigner
	uploader    Uploader
	persister   Persister
	logger      *zap.Logger
	concurrency int
}

// New builds a pipeline.
func New(presigner Presigner, uploader Uploader, persister Persister, opts ...Option) *Pipeline {
	p := &Pipeline{
		presigner: presigner,
		uploader:  uploader,
		persister: persister,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run executes one batch.
//
// A presign failure aborts the batch with no uploads. Files without a slot
// are never uploaded and make Run return a *MissingSlotError, but the files
// that did get a slot are still uploaded and persisted. Upload failures are
// reported per file in the Result and do not make Run fail; a persist
// failure does.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Files) == 0 {
		return Result{}, nil
	}
	if p.presigner == nil || p.uploader == nil || p.persister == nil {
		return Result{}, fmt.Errorf("upload: pipeline is not fully configured")
	}
	logger := p.logger.With(zap.String("parent", req.ParentID), zap.String("classification", req.Classification))

	names := make([]string, len(req.Files))
	for i, file := range req.Files {
		names[i] = file.Name
	}
	slots, err := p.presigner.Presign(ctx, req.ParentID, names, req.Classification)
	if err != nil {
		logger.Warn("presign failed", zap.Int("files", len(names)), zap.Error(err))
		return Result{}, fmt.Errorf("upload: presign: %w", err)
	}

	result := Result{Files: make([]FileResult, len(req.Files))}
	assigned := matchSlots(names, slots)
	var missing []string
	for i, file := range req.Files {
		result.Files[i] = FileResult{Name: file.Name}
		if assigned[i] == nil {
			missing = append(missing, file.Name)
			result.Files[i].Outcome = OutcomeMissingSlot
			result.Files[i].Err = &MissingSlotError{Names: []string{file.Name}}
			logger.Warn("no presigned slot", zap.String("file", file.Name))
			continue
		}
		result.Files[i].Key = assigned[i].Key
	}

	group, gctx := errgroup.WithContext(ctx)
	if p.concurrency > 0 {
		group.SetLimit(p.concurrency)
	}
	for i, file := range req.Files {
		slot := assigned[i]
		if slot == nil {
			continue
		}
		group.Go(func() error {
			if err := p.uploader.Upload(gctx, *slot, file); err != nil {
				result.Files[i].Outcome = OutcomeFailed
				result.Files[i].Err = err
				logger.Warn("upload failed", zap.String("file", file.Name), zap.Error(err))
				return nil
			}
			result.Files[i].Outcome = OutcomeUploaded
			logger.Debug("uploaded", zap.String("file", file.Name), zap.String("key", slot.Key))
			return nil
		})
	}
	// Workers never return an error so siblings are never cancelled.
	_ = group.Wait()

	if keys := result.Uploaded(); len(keys) > 0 {
		if err := p.persister.Persist(ctx, req.ParentID, keys, req.Classification); err != nil {
			logger.Warn("persist failed", zap.Int("keys", len(keys)), zap.Error(err))
			return result, fmt.Errorf("upload: persist: %w", err)
		}
		result.Persisted = true
	}
	logger.Info("upload batch finished",
		zap.Int("files", len(req.Files)),
		zap.Int("uploaded", len(result.Uploaded())),
		zap.Int("failed", len(result.Failed())),
	)

	if len(missing) > 0 {
		return result, &MissingSlotError{Names: missing}
	}
	return result, nil
}

// matchSlots pairs each name with the first unused slot of the same name. Two
// files with the same name consume slots in order.
func matchSlots(names []string, slots []Slot) []*Slot {
	byName := make(map[string][]int, len(slots))
	for i, slot := range slots {
		if slot.URL == "" {
			continue
		}
		byName[slot.Name] = append(byName[slot.Name], i)
	}
	out := make([]*Slot, len(names))
	for i, name := range names {
		queue := byName[name]
		if len(queue) == 0 {
			continue
		}
		slot := slots[queue[0]]
		out[i] = &slot
		byName[name] = queue[1:]
	}
	return out
}
