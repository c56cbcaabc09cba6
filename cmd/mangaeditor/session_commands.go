package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mangaeditor/internal/rows"
	"mangaeditor/internal/session"
	"mangaeditor/internal/syncctl"
)

// syncGrace is added to the request timeout when waiting for the startup sync.
const syncGrace = 2 * time.Second

// withSession opens a session, waits for its startup sync and runs fn.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*session.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	s, err := session.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer s.Close()

	waitCtx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout()+syncGrace)
	defer cancel()
	if _, err := s.WaitForSync(waitCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fn(s)
}

type showOutput struct {
	SessionID string     `json:"sessionId"`
	Sync      string     `json:"sync"`
	Origin    string     `json:"origin"`
	Selection *int64     `json:"selection"`
	Rows      []rows.Row `json:"rows"`
}

func sessionView(s *session.Session) showOutput {
	out := showOutput{
		SessionID: s.ID,
		Sync:      s.Sync.State().String(),
		Origin:    string(s.Store.Origin()),
		Rows:      s.Store.Snapshot(),
	}
	if id, ok := s.Store.Selection(); ok {
		out.Selection = &id
	}
	return out
}

func printSessionView(cmd *cobra.Command, view showOutput, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, view)
	}
	out := cmd.OutOrStdout()
	var selected int64
	if view.Selection != nil {
		selected = *view.Selection
	}
	fmt.Fprintln(out, renderRows(view.Rows, selected, view.Selection != nil))
	fmt.Fprintf(out, "%d rows (loaded from %s, sync %s)\n", len(view.Rows), view.Origin, view.Sync)
	return nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Open an editing session and display its table",
		RunE: func(cmd *cobra.Command, args []string) error {
			var slotPath string
			err := ctx.withSession(cmd, func(s *session.Session) error {
				slotPath = s.Slot.Path()
				return printSessionView(cmd, sessionView(s), asJSON)
			})
			if err != nil || !watch {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return watchSlot(cmd, cfg, slotPath, asJSON, logger)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session table as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the cache slot changes")
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <row-id> <field> <value>",
		Short: "Edit one cell in the local table",
		Long: "Edit one cell in the local table. field is mediaPath, text or translation.\n" +
			"The change is written to the local cache only; the row service is not updated.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid row id %q", args[0])
			}
			return ctx.withSession(cmd, func(s *session.Session) error {
				applied, err := s.Editor.EditCell(rowID, args[1], args[2])
				if err != nil {
					return err
				}
				if !applied {
					return fmt.Errorf("row %d is not in the table", rowID)
				}
				s.Editor.Select(rowID)
				row, _ := s.Store.Row(rowID)
				fmt.Fprintln(cmd.OutOrStdout(), renderRows([]rows.Row{row}, rowID, true))
				return nil
			})
		},
	}
	return cmd
}

func newSaveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the session table to the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session.Session) error {
				if err := s.Editor.SaveSnapshot(); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				state := s.Sync.State()
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rows to cache slot %s\n", len(s.Store.Snapshot()), s.Slot.Name())
				if state == syncctl.StateReadyStale {
					fmt.Fprintln(cmd.OutOrStdout(), "Row service was unreachable; saved the cached table")
				}
				return nil
			})
		},
	}
}
