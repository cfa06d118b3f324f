package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	gridform "github.com/goliatone/go-gridform"
	"github.com/goliatone/go-gridform/pkg/apiclient"
	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/config"
	"github.com/goliatone/go-gridform/pkg/renderers/vanilla"
	"github.com/goliatone/go-gridform/pkg/schema"
	"github.com/goliatone/go-gridform/pkg/storage/s3presign"
	"github.com/goliatone/go-gridform/pkg/upload"
)

// runtime groups the collaborators shared by the subcommands.
type runtime struct {
	schemas *schema.Store
	app     *appctx.Context
	state   appctx.Store
	client  *apiclient.Client
}

func loadSchemas(c *config.Config) (*schema.Store, error) {
	if c.Server.SchemaDir == "" {
		return gridform.LoadSchemas()
	}
	return schema.LoadFS(os.DirFS(c.Server.SchemaDir))
}

// newRuntime loads the schemas and the persisted app context and builds the
// API client bound to it.
func newRuntime(c *config.Config, log *zap.Logger) (*runtime, error) {
	schemas, err := loadSchemas(c)
	if err != nil {
		return nil, err
	}
	state, err := appctx.NewFileStore(c.AppState.Path)
	if err != nil {
		return nil, err
	}
	app, err := appctx.Load(state, log)
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	client, err := apiclient.New(c.API.BaseURL,
		apiclient.WithTimeout(c.API.Timeout),
		apiclient.WithLogger(log),
		apiclient.WithAppContext(app),
	)
	if err != nil {
		return nil, err
	}
	return &runtime{schemas: schemas, app: app, state: state, client: client}, nil
}

func (rt *runtime) save(log *zap.Logger) {
	if err := rt.app.Save(rt.state); err != nil {
		log.Warn("save app state", zap.Error(err))
	}
}

// presigner selects where upload slots come from: the backend in api mode,
// local signing against the bucket in s3 mode.
func (rt *runtime) presigner(ctx context.Context, c *config.Config, log *zap.Logger) (upload.Presigner, error) {
	if c.Storage.Mode != config.StorageS3 {
		return rt.client, nil
	}
	return s3presign.New(ctx, s3presign.Config{
		Bucket:          c.Storage.Bucket,
		Region:          c.Storage.Region,
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		KeyPrefix:       c.Storage.KeyPrefix,
		TTL:             c.Storage.PresignTTL,
		UsePathStyle:    c.Storage.UsePathStyle,
	}, s3presign.WithLogger(log))
}

func (rt *runtime) pipeline(ctx context.Context, c *config.Config, log *zap.Logger, resource string) (*upload.Pipeline, error) {
	presigner, err := rt.presigner(ctx, c, log)
	if err != nil {
		return nil, err
	}
	return upload.New(presigner,
		upload.NewHTTPUploader(&http.Client{Timeout: c.API.Timeout}),
		rt.client.FilesPersister(resource),
		upload.WithLogger(log),
		upload.WithConcurrency(c.Storage.Concurrency),
	), nil
}

func newRenderer(c *config.Config) (*vanilla.Renderer, error) {
	themeCfg := &theme.RendererConfig{Theme: c.UI.Theme, Variant: c.UI.Variant}
	if c.UI.ThemeFile != "" {
		manifest, err := loadThemeManifest(c.UI.ThemeFile)
		if err != nil {
			return nil, err
		}
		themeCfg = vanilla.ThemeConfig(manifest, c.UI.Variant)
	}
	return vanilla.New(
		vanilla.WithAssetPrefix(c.UI.AssetPrefix),
		vanilla.WithTheme(themeCfg),
	)
}

// loadThemeManifest reads a YAML theme manifest and checks it registers.
func loadThemeManifest(path string) (*theme.Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read theme %s: %w", path, err)
	}
	manifest := &theme.Manifest{}
	if err := yaml.Unmarshal(raw, manifest); err != nil {
		return nil, fmt.Errorf("decode theme %s: %w", path, err)
	}
	if err := theme.NewRegistry().Register(manifest); err != nil {
		return nil, fmt.Errorf("register theme %s: %w", path, err)
	}
	return manifest, nil
}
