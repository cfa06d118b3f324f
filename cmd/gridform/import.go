package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/schema"
)

var importOutDir string

// importCmd converts x-gridform annotated OpenAPI components into schema
// files that --schemas can load.
var importCmd = &cobra.Command{
	Use:   "import <openapi-file>",
	Short: "Derive entity schemas from an OpenAPI document",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importOutDir, "out", "o", "", "Write one <entity>.yaml per schema into this directory instead of stdout")
	schemasCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	schemas, err := schema.FromOpenAPI(cmd.Context(), data)
	if err != nil {
		return err
	}
	if len(schemas) == 0 {
		return fmt.Errorf("%s declares no component with %s", args[0], schema.ExtEntity)
	}

	if importOutDir == "" {
		for i, sch := range schemas {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "---")
			}
			encoded, err := encodeSchema(sch)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
				return err
			}
		}
		return nil
	}

	if err := os.MkdirAll(importOutDir, 0o755); err != nil {
		return err
	}
	for _, sch := range schemas {
		encoded, err := encodeSchema(sch)
		if err != nil {
			return err
		}
		path := filepath.Join(importOutDir, sch.Entity+".yaml")
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			return err
		}
		logger.Info("schema written", zap.String("entity", sch.Entity), zap.String("path", path))
	}
	return nil
}

func encodeSchema(sch model.Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sch); err != nil {
		return nil, fmt.Errorf("encode schema %q: %w", sch.Entity, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
