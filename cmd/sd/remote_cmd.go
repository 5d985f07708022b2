package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/client"
	"github.com/alfredjeanlab/shipdesk/internal/config"
)

var remoteCmd = &cobra.Command{
	Use:     "remote",
	Short:   "Manage named server remotes",
	GroupID: "system",
	// Remote subcommands only touch the local remotes file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

// maskToken keeps the first eight characters of a token.
func maskToken(tok, fill string) string {
	if len(tok) <= 8 {
		return tok
	}
	if fill == "*" {
		return tok[:8] + strings.Repeat("*", len(tok)-8)
	}
	return tok[:8] + fill
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add or update a named remote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		r := Remote{URL: strings.TrimRight(args[1], "/")}
		r.Token, _ = cmd.Flags().GetString("token")
		r.NATSURL, _ = cmd.Flags().GetString("nats")
		r.View, _ = cmd.Flags().GetString("view")
		check, _ := cmd.Flags().GetBool("check")

		if err := r.validate(); err != nil {
			return fmt.Errorf("remote %q: %w", name, err)
		}
		if check {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			status, err := client.NewHTTPClient(r.URL, r.Token).Health(ctx)
			if err != nil {
				return fmt.Errorf("remote %q: health check: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "health: %s\n", status)
		}

		err := updateRemotes(func(c *RemotesConfig) error {
			c.Remotes[name] = r
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q saved (%s)\n", name, r.URL)
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateRemotes(func(c *RemotesConfig) error { return c.remove(args[0]) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "remote %q removed\n", args[0])
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all remotes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRemotesConfig()
		if err != nil {
			return err
		}
		if len(cfg.Remotes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no remotes configured")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tURL\tTOKEN\tFEED")
		for _, name := range cfg.names() {
			r := cfg.Remotes[name]
			marker := "  "
			if name == cfg.Active {
				marker = "* "
			}
			feed := config.TransportSSE
			if r.NATSURL != "" {
				feed = config.TransportNATS
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", marker, name, r.URL, maskToken(r.Token, "..."), feed)
		}
		return w.Flush()
	},
}

var remoteUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateRemotes(func(c *RemotesConfig) error { return c.use(args[0]) }); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active remote set to %q\n", args[0])
		return nil
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show [<name>]",
	Short: "Show details for a remote (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRemotesConfig()
		if err != nil {
			return err
		}
		var want string
		if len(args) == 1 {
			want = args[0]
		}
		name, r, err := cfg.resolve(want)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		active := ""
		if name == cfg.Active {
			active = " (active)"
		}
		fmt.Fprintf(w, "name:\t%s%s\n", name, active)
		fmt.Fprintf(w, "url:\t%s\n", r.URL)
		if r.Token != "" {
			fmt.Fprintf(w, "token:\t%s\n", maskToken(r.Token, "*"))
		}
		if r.NATSURL != "" {
			fmt.Fprintf(w, "nats_url:\t%s\n", r.NATSURL)
		}
		if r.View != "" {
			fmt.Fprintf(w, "view:\t%s\n", r.View)
			if vc, err := config.LoadViewConfig(r.View); err == nil {
				fmt.Fprintf(w, "columns:\t%s\n", strings.Join(vc.Columns, ", "))
				fmt.Fprintf(w, "debounce:\t%s\n", vc.Debounce)
			}
		}
		return w.Flush()
	},
}

func init() {
	remoteAddCmd.Flags().String("token", "", "bearer token for authentication")
	remoteAddCmd.Flags().String("nats", "", "NATS URL for change streaming")
	remoteAddCmd.Flags().String("view", "", "table view TOML file")
	remoteAddCmd.Flags().Bool("check", false, "probe the server's health before saving")

	remoteCmd.AddCommand(remoteAddCmd, remoteRemoveCmd, remoteListCmd, remoteUseCmd, remoteShowCmd)
}
