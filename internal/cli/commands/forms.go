package commands

import (
	"github.com/spf13/cobra"

	"github.com/m-kr/cms-nano/pkg/form"
)

type formsDocument struct {
	Main     form.Form `json:"main"`
	Field    form.Form `json:"field"`
	Fieldset form.Form `json:"fieldset"`
}

// NewFormsCommand creates the forms command
func NewFormsCommand(app *App) *cobra.Command {
	var (
		offline bool
		format  string
	)
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Print the descriptor sets used to edit component patterns",
		Long: `Print the main, field and fieldset descriptor sets. The field type
selector is filled from the remote catalog unless --offline is given, in
which case it stays hidden.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var doc formsDocument
			if offline {
				builder := form.New(app.Registry)
				doc = formsDocument{
					Main:     builder.MainParameters(),
					Field:    builder.FieldForm(nil),
					Fieldset: builder.FieldsetForm(),
				}
				return writeDocument(cmd.OutOrStdout(), doc, format)
			}

			session, err := app.session(cmd.OutOrStdout(), cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			if err := check(session.StartNew(cmd.Context())); err != nil {
				return err
			}
			forms := session.Forms()
			doc = formsDocument{Main: forms.Main, Field: forms.Field, Fieldset: forms.Fieldset}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "do not fetch the field type catalog")
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format (json, yaml)")
	return cmd
}
