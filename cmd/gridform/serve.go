package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/internal/server"
	"github.com/goliatone/go-gridform/pkg/upload"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin web server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.save(logger)

	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}
	presigner, err := rt.presigner(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Deps{
		Schemas:   rt.schemas,
		Renderer:  renderer,
		Backend:   rt.client,
		App:       rt.app,
		Presigner: presigner,
		Uploader:  upload.NewHTTPUploader(nil),
		Persister: func(resource string) upload.Persister {
			return rt.client.FilesPersister(resource)
		},
	},
		server.WithLogger(logger),
		server.WithUploadConcurrency(cfg.Storage.Concurrency),
		server.WithAssetPrefix(cfg.UI.AssetPrefix),
		server.WithPageSize(cfg.UI.PageSize),
		server.WithHTTPTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	)
	if err != nil {
		return err
	}

	logger.Info("serving",
		zap.Strings("entities", rt.schemas.Entities()),
		zap.String("storage", cfg.Storage.Mode),
		zap.String("api", cfg.API.BaseURL),
	)
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
}
