package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/m-kr/cms-nano/internal/prompt"
	"github.com/m-kr/cms-nano/pkg/listing"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/remotesync"
)

// NewPatternsCommand creates the patterns command group
func NewPatternsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern", "cp"},
		Short:   "Browse and edit component patterns",
	}

	cmd.AddCommand(newPatternsListCommand(app))
	cmd.AddCommand(newPatternsShowCommand(app))
	cmd.AddCommand(newPatternsNewCommand(app))
	cmd.AddCommand(newPatternsEditCommand(app))
	cmd.AddCommand(newPatternsDeleteCommand(app))
	return cmd
}

func newPatternsListCommand(app *App) *cobra.Command {
	var (
		page   int
		search string
		sort   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List component patterns one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var result remotesync.Result[listing.State]
			if search != "" {
				result = session.Search(ctx, search)
			} else {
				result = session.LoadListing(ctx, 1)
			}
			if err := check(result); err != nil {
				return err
			}
			if page > 1 {
				result = session.ChangePage(ctx, page)
				if err := check(result); err != nil {
					return err
				}
			}
			// Sorting keeps the page reached above.
			if sort != "" {
				result = session.SortBy(ctx, sort)
				if err := check(result); err != nil {
					return err
				}
			}
			return printListing(cmd.OutOrStdout(), result.Value)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name")
	cmd.Flags().StringVar(&sort, "sort", "", "sort key, prefix with - for descending (e.g. -updatedAt)")
	return cmd
}

func newPatternsShowCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one component pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			result := session.Open(cmd.Context(), args[0])
			if err := check(result); err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), result.Value, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format (json, yaml)")
	return cmd
}

func newPatternsNewCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a component pattern interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			started := session.StartNew(ctx)
			if err := check(started); err != nil {
				return err
			}
			author := prompt.NewAuthor(app.Driver, session.FieldTypes())
			if err := author.Compose(ctx, started.Value, session.Forms()); err != nil {
				return err
			}
			created := session.SubmitNew(ctx)
			if err := check(created); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.Value)
			return nil
		},
	}
}

func newPatternsEditCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a component pattern's main parameters and add fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if err := check(session.Open(ctx, args[0])); err != nil {
				return err
			}
			forms := session.Forms()
			author := prompt.NewAuthor(app.Driver, session.FieldTypes())
			state := session.Editor()
			if err := author.EditMain(ctx, state, forms.Main); err != nil {
				return err
			}
			if err := author.AddFields(ctx, state, forms.Field); err != nil {
				return err
			}
			if err := author.AddFieldsets(ctx, state, forms.Fieldset, forms.Field); err != nil {
				return err
			}
			return check(session.Save(ctx))
		},
	}
}

func newPatternsDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a component pattern",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm listing.Confirmer = prompt.Confirmer{Driver: app.Driver}
			if yes {
				confirm = nil
			}
			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), confirm)
			if err != nil {
				return err
			}
			result := session.Remove(cmd.Context(), args[0])
			if err := check(result); err != nil {
				return err
			}
			if !result.Value {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Nothing removed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func printListing(out io.Writer, state listing.State) error {
	infoColor := color.New(color.FgWhite)

	if len(state.Items) == 0 {
		infoColor.Fprintln(out, "No component patterns found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tFIELDS\tUPDATED\tID")
	for _, item := range state.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", item.Name, item.Label, countFields(item), formatTime(item.UpdatedAt), item.ID)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("page %d of %d", state.CurrentPage, state.TotalPages)
	if state.Search != "" {
		footer += fmt.Sprintf(", search %q", state.Search)
	}
	if state.Sort != "" {
		footer += ", sort " + state.Sort
	}
	infoColor.Fprintln(out, footer)
	return nil
}

func countFields(p model.ComponentPattern) int {
	n := len(p.Fields)
	for _, set := range p.Fieldset {
		n += len(set.Fields)
	}
	return n
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
