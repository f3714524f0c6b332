package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goblinsan/gh-project-gantt/pkg/engine"
	"github.com/goblinsan/gh-project-gantt/pkg/github"
	"github.com/goblinsan/gh-project-gantt/pkg/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	rootCmd.AddCommand(listCmd)
	addResolveFlags(listCmd)
	listCmd.Flags().String("format", "table", "output format: table, json, or yaml")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List board items with their resolved dates and statuses",
	Long: `List fetches a project board and prints every item as the export command
would resolve it, including the reason an item would be skipped. Useful for
checking field names and dates before exporting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := github.NewClient(resolveToken())
		if err != nil {
			return fmt.Errorf("failed to create github client: %w", err)
		}

		res, err := engine.Resolve(context.Background(), client, resolveOptions(cmd))
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal listing: %w", err)
			}
			fmt.Println(string(data))
		case "yaml":
			data, err := yaml.Marshal(res)
			if err != nil {
				return fmt.Errorf("failed to marshal listing: %w", err)
			}
			fmt.Print(string(data))
		case "table":
			printTable(os.Stdout, res)
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
		return nil
	},
}

func printTable(w io.Writer, res *engine.Resolution) {
	if res.Project != "" {
		fmt.Fprintln(w, ui.Bold(res.Project))
	}
	for _, t := range res.Tasks {
		fmt.Fprintf(w, "  %s %-11s  %s  %s  %4s  %-16s  %s\n",
			ui.StatusIcon(t.Status),
			ui.StatusLabel(t.Status),
			t.Start.Format("2006-01-02"),
			t.End.Format("2006-01-02"),
			fmt.Sprintf("%dd", t.Days()),
			t.Subject,
			t.Title,
		)
	}
	for _, s := range res.Report.Skipped {
		fmt.Fprintf(w, "  %s  %s\n", ui.Yellow("⊘"), ui.Dim(s.Error()))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.Report.String())
}
