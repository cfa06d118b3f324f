package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-gridform/pkg/form"
	"github.com/goliatone/go-gridform/pkg/model"
	"github.com/goliatone/go-gridform/pkg/renderers/tui"
)

var (
	promptEntity string
	promptID     string
	promptDryRun bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Create or edit one record in the terminal",
	Long: `prompt asks for every editable field of an entity and saves the answers.
With --id the record is loaded first and its values are offered as defaults.
--dry-run prints the request payload instead of sending it.`,
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptEntity, "entity", "e", "", "Entity to edit (see `gridform schemas`)")
	promptCmd.Flags().StringVar(&promptID, "id", "", "Record id to edit; omit to create")
	promptCmd.Flags().BoolVar(&promptDryRun, "dry-run", false, "Print the payload without saving")
	_ = promptCmd.MarkFlagRequired("entity")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.save(logger)

	sch, ok := rt.schemas.Schema(promptEntity)
	if !ok {
		return fmt.Errorf("unknown entity %q", promptEntity)
	}
	resource := resourceName(sch)

	initial := map[string]any{}
	if promptID != "" {
		initial, err = rt.client.Get(ctx, resource, promptID)
		if err != nil {
			return err
		}
	}
	state := form.New(sch, initial)

	out := cmd.OutOrStdout()
	renderer, err := tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(out)),
		tui.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := renderer.Fill(ctx, state); err != nil {
		return err
	}
	fmt.Fprint(out, "\n"+tui.Summary(state))

	if promptDryRun {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Payload())
	}
	if promptID != "" && !state.AnyDirty() {
		fmt.Fprintln(out, "변경된 내용이 없습니다")
		return nil
	}

	var saved map[string]any
	if promptID == "" {
		saved, err = rt.client.Create(ctx, resource, state.Payload())
	} else {
		saved, err = rt.client.Update(ctx, resource, promptID, state.Version(), state.Payload())
	}
	if err != nil {
		return err
	}
	logger.Info("record saved",
		zap.String("entity", sch.Entity),
		zap.Any("id", saved[sch.RowIDField()]),
	)
	fmt.Fprintln(out, "저장되었습니다")
	return nil
}

func resourceName(sch model.Schema) string {
	if sch.Resource != "" {
		return sch.Resource
	}
	return sch.Entity
}
