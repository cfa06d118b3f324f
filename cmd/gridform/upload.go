package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-gridform/pkg/upload"
)

var (
	uploadEntity         string
	uploadParentID       string
	uploadClassification string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload files and attach them to a record",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadEntity, "entity", "e", "", "Entity owning the record")
	uploadCmd.Flags().StringVar(&uploadParentID, "id", "", "Record id the files belong to")
	uploadCmd.Flags().StringVar(&uploadClassification, "classification", "", "File classification, e.g. photo or report")
	_ = uploadCmd.MarkFlagRequired("entity")
	_ = uploadCmd.MarkFlagRequired("id")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.save(logger)

	sch, ok := rt.schemas.Schema(uploadEntity)
	if !ok {
		return fmt.Errorf("unknown entity %q", uploadEntity)
	}

	files := make([]upload.File, 0, len(args))
	for _, path := range args {
		file, err := upload.DiskFile(path)
		if err != nil {
			return err
		}
		files = append(files, file)
	}

	pipeline, err := rt.pipeline(ctx, cfg, logger, resourceName(sch))
	if err != nil {
		return err
	}
	result, runErr := pipeline.Run(ctx, upload.Request{
		ParentID:       uploadParentID,
		Classification: uploadClassification,
		Files:          files,
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tOUTCOME\tKEY\tERROR")
	for _, file := range result.Files {
		msg := ""
		if file.Err != nil {
			msg = file.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", file.Name, file.Outcome, file.Key, msg)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !result.Persisted {
		fmt.Fprintln(cmd.ErrOrStderr(), "no file was attached")
	}
	return nil
}
