package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/shipdesk/internal/model"
	"github.com/alfredjeanlab/shipdesk/internal/ui"
)

// helpRule restyles every match of re in Cobra's help text.
type helpRule struct {
	re    *regexp.Regexp
	style func(groups []string) string
}

// helpRules are applied in order.
var helpRules = []helpRule{
	// Section headers ("Shipment requests:", "Flags:"); "Usage:" is left plain.
	{regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`), func(g []string) string {
		if g[1] == "Usage:" {
			return g[0]
		}
		return ui.RenderAccent(g[1])
	}},
	// Command names in the command list.
	{regexp.MustCompile(`(?m)^(  )(\S+)(  )`), func(g []string) string {
		return g[1] + ui.RenderCommand(g[2]) + g[3]
	}},
	// Flag types such as "--limit int".
	{regexp.MustCompile(`(--?\S+\s+)(string|int|duration|stringSlice|stringArray)\b`), func(g []string) string {
		return g[1] + ui.RenderMuted(g[2])
	}},
	{regexp.MustCompile(`\(default [^)]*\)`), func(g []string) string {
		return ui.RenderMuted(g[0])
	}},
	{statusPattern(), func(g []string) string {
		return ui.RenderStatus(model.Status(g[0]))
	}},
}

// statusPattern matches any lifecycle label.
func statusPattern() *regexp.Regexp {
	labels := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		labels[i] = regexp.QuoteMeta(string(s))
	}
	return regexp.MustCompile(`\b(` + strings.Join(labels, "|") + `)\b`)
}

// colorizedHelpFunc returns a Cobra help function that prints the command's
// description and usage, styled when the terminal supports color.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		text := helpText(cmd)
		if ui.ShouldUseColor() {
			text = colorizeHelpOutput(text)
		}
		fmt.Fprint(out, text)
	}
}

func helpText(cmd *cobra.Command) string {
	var buf bytes.Buffer
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	if desc != "" {
		fmt.Fprintf(&buf, "%s\n\n", strings.TrimRight(desc, " \n"))
	}
	out := cmd.OutOrStdout()
	cmd.SetOut(&buf)
	_ = cmd.Usage()
	cmd.SetOut(out)
	return buf.String()
}

func colorizeHelpOutput(s string) string {
	for _, r := range helpRules {
		s = r.re.ReplaceAllStringFunc(s, func(match string) string {
			return r.style(r.re.FindStringSubmatch(match))
		})
	}
	return s
}
