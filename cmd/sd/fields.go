package main

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/shipdesk/internal/table"
)

// splitField splits "key=value" into (key, value, true).
// Returns ("", "", false) if there is no '=' or key is empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseEditArgs stages edits from a flat argument list. A bare token names
// the row that the following key=value pairs apply to:
//
//	sr-abc status="In Review" sr-def estimated_delivery=2026-11-02
func parseEditArgs(args []string) (*table.PendingEdits, error) {
	edits := table.NewPendingEdits()
	var id string
	for _, a := range args {
		k, v, ok := splitField(a)
		if !ok {
			if strings.Contains(a, "=") {
				return nil, fmt.Errorf("invalid field %q: expected key=value", a)
			}
			id = a
			continue
		}
		if id == "" {
			return nil, fmt.Errorf("field %q given before a row id", a)
		}
		if err := edits.Set(id, k, v); err != nil {
			return nil, err
		}
	}
	if edits.Len() == 0 {
		return nil, fmt.Errorf("no edits given")
	}
	return edits, nil
}
