package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-gridform/pkg/model"
)

var schemasJSON bool

var schemasCmd = &cobra.Command{
	Use:   "schemas [entity]",
	Short: "List entity schemas or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchemas,
}

func init() {
	schemasCmd.Flags().BoolVar(&schemasJSON, "json", false, "Print as JSON")
}

func runSchemas(cmd *cobra.Command, args []string) error {
	store, err := loadSchemas(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		sch, ok := store.Schema(args[0])
		if !ok {
			return fmt.Errorf("unknown entity %q", args[0])
		}
		if schemasJSON {
			return writeJSON(cmd, sch)
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\tresource=%s\n\n", sch.Entity, sch.Title, resourceName(sch))
		fmt.Fprintln(w, "KEY\tLABEL\tKIND\tFLAGS")
		for _, field := range sch.Fields {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", field.Key, field.Label, field.Kind, fieldFlags(field))
		}
		return w.Flush()
	}

	var all []model.Schema
	for _, entity := range store.Entities() {
		sch, _ := store.Schema(entity)
		all = append(all, sch)
	}
	if schemasJSON {
		return writeJSON(cmd, all)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTITY\tTITLE\tRESOURCE\tFIELDS")
	for _, sch := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", sch.Entity, sch.Title, resourceName(sch), len(sch.Fields))
	}
	return w.Flush()
}

func fieldFlags(field model.FieldMetadata) string {
	var flags []byte
	add := func(on bool, name string) {
		if !on {
			return
		}
		if len(flags) > 0 {
			flags = append(flags, ',')
		}
		flags = append(flags, name...)
	}
	add(field.Required, "required")
	add(field.Disabled, "disabled")
	add(field.Sensitive, "sensitive")
	add(field.Hidden, "hidden")
	add(field.Filterable, "filter")
	add(field.Sortable, "sort")
	if field.Rule != model.RuleNone {
		add(true, string(field.Rule))
	}
	return string(flags)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
