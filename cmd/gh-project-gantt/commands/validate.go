package commands

import (
	"fmt"
	"os"

	"github.com/goblinsan/gh-project-gantt/pkg/gantt"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("file", "f", "", "The diagram file to validate")
	validateCmd.MarkFlagRequired("file")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an exported diagram file",
	Long:  `Validate a previously exported Mermaid gantt file. Checks the notation line by line, then structural rules the exporter guarantees (dateFormat header, unique sections, milestone ids).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")

		text, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		diagram, err := gantt.Parse(string(text))
		if err != nil {
			return fmt.Errorf("invalid diagram: %w", err)
		}

		errs := validateDiagram(diagram)
		if len(errs) > 0 {
			fmt.Fprintf(os.Stderr, "Validation failed with %d error(s):\n", len(errs))
			for i, e := range errs {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, e)
			}
			os.Exit(1)
		}

		fmt.Println("Diagram is valid.")
		return nil
	},
}

// validateDiagram applies the structural rules the exporter guarantees on top
// of a syntactically valid parse.
func validateDiagram(d *gantt.Diagram) []string {
	var errs []string

	if d.DateFormat == "" {
		errs = append(errs, "missing dateFormat header")
	} else if d.DateFormat != "YYYY-MM-DD" {
		errs = append(errs, fmt.Sprintf("dateFormat %q is not YYYY-MM-DD", d.DateFormat))
	}

	sectionNames := make(map[string]bool)
	markerIDs := make(map[string]bool)
	for i, s := range d.Sections {
		if sectionNames[s.Name] {
			errs = append(errs, fmt.Sprintf("sections[%d]: duplicate section %q", i, s.Name))
		}
		sectionNames[s.Name] = true

		if len(s.Entries) == 0 {
			errs = append(errs, fmt.Sprintf("sections[%d] %q: section has no entries", i, s.Name))
		}
		for j, e := range s.Entries {
			if !e.Milestone {
				continue
			}
			if e.ID == "" {
				errs = append(errs, fmt.Sprintf("sections[%d].entries[%d] %q: milestone has no id", i, j, e.Title))
			} else if markerIDs[e.ID] {
				errs = append(errs, fmt.Sprintf("sections[%d].entries[%d] %q: duplicate milestone id %q", i, j, e.Title, e.ID))
			}
			markerIDs[e.ID] = true
		}
	}

	return errs
}
