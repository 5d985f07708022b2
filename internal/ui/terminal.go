package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout should get ANSI colors, following
// NO_COLOR, CLICOLOR_FORCE and CLICOLOR before falling back to TTY detection.
func ShouldUseColor() bool {
	return colorFromEnv(os.Getenv, func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
}

func colorFromEnv(getenv func(string) string, isTTY func() bool) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case strings.TrimSpace(getenv("CLICOLOR_FORCE")) == "1":
		return true
	case strings.TrimSpace(getenv("CLICOLOR")) == "0":
		return false
	}
	return isTTY()
}
