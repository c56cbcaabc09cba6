package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mangaeditor/internal/rowclient"
	"mangaeditor/internal/rows"
)

func newRowsCommand(ctx *commandContext) *cobra.Command {
	rowsCmd := &cobra.Command{
		Use:   "rows",
		Short: "Inspect and create rows on the row service",
	}
	rowsCmd.AddCommand(newRowsListCommand(ctx))
	rowsCmd.AddCommand(newRowsAddCommand(ctx))
	return rowsCmd
}

func (c *commandContext) rowClient() (*rowclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return rowclient.NewFromConfig(cfg)
}

func newRowsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rows stored by the row service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.rowClient()
			if err != nil {
				return err
			}
			records, err := client.ListRows(cmd.Context())
			if err != nil {
				return fmt.Errorf("list rows from %s: %w", client.BaseURL(), err)
			}
			if asJSON {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rows stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecords(records))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the records as JSON")
	return cmd
}

func newRowsAddCommand(ctx *commandContext) *cobra.Command {
	var mediaPath, text, translation string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a row on the row service",
		Long:  "Create a row on the row service. Flags that are not given are stored as NULL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.rowClient()
			if err != nil {
				return err
			}
			var draft rows.Draft
			if cmd.Flags().Changed("media-path") {
				draft.MediaPath = rows.StringPtr(mediaPath)
			}
			if cmd.Flags().Changed("text") {
				draft.Text = rows.StringPtr(text)
			}
			if cmd.Flags().Changed("translation") {
				draft.Translation = rows.StringPtr(translation)
			}
			id, err := client.Create(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("create row on %s: %w", client.BaseURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created row %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&mediaPath, "media-path", "", "Reference media path")
	cmd.Flags().StringVar(&text, "text", "", "Source text")
	cmd.Flags().StringVar(&translation, "translation", "", "Translated text")
	return cmd
}
