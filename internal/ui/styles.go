package ui

import (
	"strconv"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ANSI 256-color codes.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorWarn   = 214 // orange
	colorOK     = 114 // green
	colorError  = 203 // red
)

// statusColors maps lifecycle labels to colors. Statuses without an entry
// render uncolored.
var statusColors = map[model.Status]int{
	model.StatusAssignedToAgent: colorWarn,
	model.StatusInReview:        colorAccent,
	model.StatusApproved:        colorOK,
	model.StatusInTransit:       colorAccent,
	model.StatusDelivered:       colorOK,
	model.StatusCancelled:       colorMuted,
}

var noColor bool

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return "\x1b[38;5;" + strconv.Itoa(code) + "m" + s + "\x1b[0m"
}

func RenderAccent(s string) string  { return paint(colorAccent, s) }
func RenderMuted(s string) string   { return paint(colorMuted, s) }
func RenderCommand(s string) string { return paint(colorCmd, s) }
func RenderError(s string) string   { return paint(colorError, s) }

// RenderStatus returns the status label in its workflow color.
func RenderStatus(s model.Status) string {
	if c, ok := statusColors[s]; ok {
		return paint(c, string(s))
	}
	return string(s)
}

// ForceNoColor disables color output for the rest of the process.
func ForceNoColor() { noColor = true }

// SetColor enables or disables color output.
func SetColor(on bool) { noColor = !on }
