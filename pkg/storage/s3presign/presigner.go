// Package s3presign issues presigned S3 PUT URLs directly, for deployments
// where the admin server holds the bucket credentials instead of the backend.
package s3presign

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/upload"
)

// DefaultTTL is how long a presigned URL stays valid.
const DefaultTTL = 15 * time.Minute

// MsgPresignFailed is the user-facing message of every presign failure.
const MsgPresignFailed = "파일 업로드 주소를 발급하지 못했습니다"

// Config selects the bucket and credentials.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	KeyPrefix       string
	TTL             time.Duration
	UsePathStyle    bool
}

// PresignAPI is the subset of s3.PresignClient used here.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Option configures a Presigner.
type Option func(*Presigner)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Presigner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIDGenerator replaces the random key component.
func WithIDGenerator(fn func() string) Option {
	return func(p *Presigner) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// Presigner implements upload.Presigner on S3.
type Presigner struct {
	api    PresignAPI
	bucket string
	prefix string
	ttl    time.Duration
	newID  func() string
	logger *zap.Logger
}

var _ upload.Presigner = (*Presigner)(nil)

// New loads the AWS configuration and builds a presigner. Static credentials
// are used when both keys are set; otherwise the default chain applies.
func New(ctx context.Context, cfg Config, opts ...Option) (*Presigner, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3presign: bucket is required")
	}
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if cfg.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.Endpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3presign: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewWithAPI(s3.NewPresignClient(client), cfg, opts...), nil
}

// NewWithAPI builds a presigner over an existing presign client.
func NewWithAPI(api PresignAPI, cfg Config, opts ...Option) *Presigner {
	p := &Presigner{
		api:    api,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.KeyPrefix, "/"),
		ttl:    cfg.TTL,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	if p.ttl <= 0 {
		p.ttl = DefaultTTL
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Presign returns one slot per name, in order. Keys have the form
// "{prefix}/{parent}/{id}-{name}".
func (p *Presigner) Presign(ctx context.Context, parentID string, names []string, classification string) ([]upload.Slot, error) {
	slots := make([]upload.Slot, 0, len(names))
	for _, name := range names {
		key := p.objectKey(parentID, name)
		req, err := p.api.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(p.ttl))
		if err != nil {
			p.logger.Warn("presign failed",
				zap.String("file", name),
				zap.String("classification", classification),
				zap.Error(err),
			)
			return nil, mapError(err)
		}
		slots = append(slots, upload.Slot{Name: name, Key: key, URL: req.URL})
	}
	return slots, nil
}

func (p *Presigner) objectKey(parentID, name string) string {
	parts := make([]string, 0, 3)
	if p.prefix != "" {
		parts = append(parts, p.prefix)
	}
	parts = append(parts, cleanSegment(parentID), p.newID()+"-"+cleanSegment(name))
	return strings.Join(parts, "/")
}

func cleanSegment(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer("/", "_", "\\", "_").Replace(s)
}

func mapError(err error) error {
	out := adminerr.NewAPI(http.StatusBadGateway, MsgPresignFailed).WithCause(err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		out.WithDetail("code", apiErr.ErrorCode())
	}
	return out
}
