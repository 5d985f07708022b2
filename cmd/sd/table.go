package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alfredjeanlab/shipdesk/internal/client"
	"github.com/alfredjeanlab/shipdesk/internal/config"
	"github.com/alfredjeanlab/shipdesk/internal/diag"
	"github.com/alfredjeanlab/shipdesk/internal/events"
	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/nav"
	"github.com/alfredjeanlab/shipdesk/internal/table"
)

var tableCmd = &cobra.Command{
	Use:     "table",
	Short:   "Show the live shipment request table",
	GroupID: "views",
	Long: `Show the shipment request table and keep it in sync with the server.

The table re-fetches when a change notification touches a visible row or
adds a row, and after local edits are committed. Type commands on stdin:

  view <id>                   open a row (Assigned to Agent moves to In Review)
  edit <id>                   open a row's edit page
  set <id> field=value...     stage edits
  commit                      save staged edits
  refresh                     re-fetch now
  quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		viewPath, _ := cmd.Flags().GetString("view")
		once, _ := cmd.Flags().GetBool("once")
		if viewPath == "" {
			viewPath = activeRemote().View
		}
		vc, err := config.LoadViewConfig(viewPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debounce") {
			vc.Debounce, _ = cmd.Flags().GetDuration("debounce")
		}
		if cmd.Flags().Changed("transport") {
			vc.Transport, _ = cmd.Flags().GetString("transport")
		}
		if err := vc.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var transport table.Transport
		if !once {
			t, closeTransport, err := openTransport(vc)
			if err != nil {
				return err
			}
			defer closeTransport()
			transport = t
		}

		var sink diag.Sink = diag.NewSlogSink(logger)
		fetchFailed := make(chan error, 1)
		if once {
			sink = diag.Tee{sink, diag.SinkFunc(func(_ context.Context, kind diag.Kind, err error, _ ...any) {
				if kind != diag.FetchFailure {
					return
				}
				select {
				case fetchFailed <- err:
				default:
				}
			})}
		}
		replaced := make(chan table.RowSet, 1)
		ctrl := table.New(table.Config{
			Query:       &client.ShipmentQuery{Client: apiClient, Filter: vc.Filter},
			Transport:   transport,
			Debounce:    vc.Debounce,
			Diagnostics: sink,
			OnReplace: func(rs table.RowSet) {
				// Latest set wins; the renderer only needs the newest.
				select {
				case <-replaced:
				default:
				}
				replaced <- rs
			},
		})
		if err := ctrl.Start(ctx); err != nil {
			return err
		}
		defer ctrl.Stop(context.Background())

		out := cmd.OutOrStdout()
		clearScreen := !once && !jsonOutput && isTerminal(out)
		render := func(rs table.RowSet) error {
			if jsonOutput {
				return printJSON(out, rs.Rows)
			}
			if clearScreen {
				fmt.Fprint(out, "\x1b[H\x1b[2J")
			}
			printRows(out, rs.Rows, vc.Columns)
			fmt.Fprintf(out, "\n%d shipment requests\n", rs.Len())
			return nil
		}

		if once {
			select {
			case rs := <-replaced:
				return render(rs)
			case err := <-fetchFailed:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		sess := &tableSession{
			rows:    ctrl.Rows,
			refresh: ctrl.Refresh,
			dispatcher: table.NewDispatcher(apiClient, ctrl, nav.NewLinkNavigator(httpURL, out), sink,
				table.WithCommitConcurrency(vc.MaxConcurrentEdits)),
			pending: table.NewPendingEdits(),
			out:     out,
		}
		lines := scanLines(ctx, cmd.InOrStdin())
		for {
			select {
			case <-ctx.Done():
				return nil
			case rs := <-replaced:
				if err := render(rs); err != nil {
					return err
				}
			case line, ok := <-lines:
				if !ok {
					// stdin closed; keep following updates until interrupted.
					lines = nil
					continue
				}
				quit, err := sess.exec(ctx, line)
				if err != nil {
					fmt.Fprintln(out, "Error:", err)
				}
				if quit {
					return nil
				}
			}
		}
	},
}

func init() {
	tableCmd.Flags().String("view", "", "view config file (defaults to the active remote's view)")
	tableCmd.Flags().Bool("once", false, "print the first load and exit")
	tableCmd.Flags().Duration("debounce", table.DefaultDebounce, "window for collapsing refresh triggers (0 selects the default)")
	tableCmd.Flags().String("transport", config.TransportSSE, "change feed transport: sse or nats")
}

// openTransport connects the change feed named by the view config.
func openTransport(vc config.ViewConfig) (table.Transport, func(), error) {
	switch vc.Transport {
	case config.TransportNATS:
		url := vc.NATSURL
		if url == "" {
			url = activeRemote().NATSURL
		}
		if url == "" {
			return nil, nil, errors.New("nats transport needs nats_url in the view or remote config")
		}
		t, err := events.NewNATSTransport(url)
		if err != nil {
			return nil, nil, err
		}
		return t, func() { _ = t.Close() }, nil
	default:
		t := client.NewSSETransport(httpURL, authToken)
		return t, func() { _ = t.Close() }, nil
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func scanLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// tableSession runs the interactive commands of the table view.
type tableSession struct {
	rows       func() (table.RowSet, bool)
	refresh    func(reason string)
	dispatcher *table.Dispatcher
	pending    *table.PendingEdits
	out        io.Writer
}

func (s *tableSession) exec(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "q", "quit", "exit":
		return true, nil
	case "refresh", "r":
		s.refresh("manual")
	case nav.ActionView, nav.ActionEdit:
		if len(args) != 1 {
			return false, fmt.Errorf("usage: %s <id>", cmd)
		}
		row, err := s.row(args[0])
		if err != nil {
			return false, err
		}
		s.dispatcher.HandleRowAction(ctx, cmd, row)
	case "set":
		if len(args) < 2 {
			return false, errors.New("usage: set <id> field=value...")
		}
		if _, err := s.row(args[0]); err != nil {
			return false, err
		}
		for _, a := range args[1:] {
			k, v, ok := splitField(a)
			if !ok {
				return false, fmt.Errorf("invalid field %q: expected key=value", a)
			}
			if err := s.pending.Set(args[0], k, v); err != nil {
				return false, err
			}
		}
		fmt.Fprintf(s.out, "%d rows staged\n", s.pending.Len())
	case "commit":
		if s.pending.Len() == 0 {
			return false, errors.New("nothing staged")
		}
		staged := s.pending.Len()
		res := s.dispatcher.CommitEdits(ctx, s.pending)
		fmt.Fprintf(s.out, "Saved %d of %d\n", staged-res.Failed, staged)
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

func (s *tableSession) row(id string) (model.Row, error) {
	rs, ok := s.rows()
	if !ok {
		return model.Row{}, errors.New("table not loaded yet")
	}
	row, ok := rs.Row(id)
	if !ok {
		return model.Row{}, fmt.Errorf("no row %s in this view", id)
	}
	return row, nil
}
