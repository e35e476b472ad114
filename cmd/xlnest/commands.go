package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/javajack/xlnest"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		schemaPath string
		output     string
		merge      bool
	)
	cmd := &cobra.Command{
		Use:   "export DATA_FILE",
		Short: "Write records to an xlsx workbook",
		Example: `  xlnest export books.json -s books.yaml -o books.xlsx
  xlnest export books.yaml -s books.yaml -o books.xlsx --merge --origin B2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts = append(opts, xlnest.WithSchemaFile(schemaPath), xlnest.WithMergeRepeated(merge))

			if err := xlnest.NewExporter(opts...).Export(cmd.Context(), records, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(records), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "YAML header schema")
	cmd.Flags().StringVarP(&output, "output", "o", "output.xlsx", "Workbook to write")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge parent cells down over their nested rows")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func newDescribeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe SCHEMA_FILE",
		Short: "Print the header grid of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts = append(opts, xlnest.WithSchemaFile(args[0]))
			out, err := xlnest.NewExporter(opts...).Describe()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate SCHEMA_FILE",
		Short: "Check a schema without data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := xlnest.ValidateFile(args[0])
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}
			failed := 0
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
				if issue.Severity == xlnest.SeverityError || strict {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d schema issue(s)", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}

// readRecords decodes a data file into a list of records. A file holding a
// single object yields one record.
func readRecords(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data %q: %w", path, err)
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &v)
	default:
		err = json.Unmarshal(data, &v)
	}
	if err != nil {
		return nil, fmt.Errorf("decode data %q: %w", path, err)
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return t, nil
	default:
		return []any{t}, nil
	}
}
