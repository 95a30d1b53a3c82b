package commands

import (
	"github.com/spf13/cobra"

	"github.com/m-kr/cms-nano/internal/apispec"
)

// NewOpenAPICommand creates the openapi command
func NewOpenAPICommand(app *App) *cobra.Command {
	var (
		format    string
		serverURL string
	)
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI description of the component pattern API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = app.Config.API.BaseURL
			}
			doc, err := apispec.Build(cmd.Context(), app.Registry, apispec.Options{
				Version:   Version,
				ServerURL: serverURL,
			})
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatJSON, "output format (json, yaml)")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "server URL to advertise (default api.base_url)")
	return cmd
}
