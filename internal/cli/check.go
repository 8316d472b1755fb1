package cli

import (
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/pipeline"
)

// diagRow is one diagnostic with the slide it came from.
type diagRow struct {
	Slide int
	diag.Diagnostic
}

// collectRows flattens the per-slide diagnostics of a result in slide order.
func collectRows(result *pipeline.Result) []diagRow {
	var rows []diagRow
	for _, s := range result.Slides {
		for _, d := range s.Diagnostics {
			rows = append(rows, diagRow{Slide: s.Index, Diagnostic: d})
		}
	}
	return rows
}

// checkCommand creates the check command that lists diagnostics.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		flags       layoutFlags
		interactive bool
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "check [deck.json]",
		Short: "List the diagnostics of a deck",
		Long: `List the diagnostics of a deck.

Every recoverable problem found while resolving styles, solving layout, and
synthesizing effects is reported with the element path and property that
caused it. Use -i to browse them interactively.

With --strict the command fails when any diagnostic has error severity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config.PipelineOptions()
			flags.apply(cmd, &opts)
			opts.Logger = c.Logger

			result, err := c.layoutDeck(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			rows := collectRows(result)

			if interactive && len(rows) > 0 {
				p := tea.NewProgram(newDiagListModel(rows), tea.WithContext(cmd.Context()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("diagnostics browser: %w", err)
				}
			} else {
				writeDiagnostics(cmd.OutOrStdout(), rows)
			}

			if strict {
				if n := len(result.Diagnostics().Errors()); n > 0 {
					return errors.New(errors.ErrCodeInvalidInput, "%s with error severity", plural(n, "diagnostic"))
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse diagnostics interactively")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any diagnostic has error severity")

	return cmd
}

// writeDiagnostics prints the diagnostics table and a per-code summary.
func writeDiagnostics(w io.Writer, rows []diagRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" No diagnostics")
		return
	}
	fmt.Fprintln(w, diagTable(rows, -1).Render())

	var all diag.List
	for _, r := range rows {
		all = append(all, r.Diagnostic)
	}
	fmt.Fprintln(w)
	for _, cc := range all.ByCode() {
		fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf("%-28s %d", cc.Code, cc.Count)))
	}
}

// diagTable builds the diagnostics table. cursor highlights one row; pass -1
// for none.
func diagTable(rows []diagRow, cursor int) *table.Table {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{
			strconv.Itoa(r.Slide),
			r.Severity.String(),
			string(r.Code),
			r.Path,
			r.Property,
			r.Message,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Slide", "Severity", "Code", "Path", "Property", "Message").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(rows) {
				return base
			}
			if row == cursor {
				base = base.Bold(true)
			}
			if col == 1 {
				return base.Inherit(severityStyle(rows[row].Severity))
			}
			if col == 3 || col == 4 {
				return base.Foreground(colorGray)
			}
			return base
		})
}
