package components

import (
	"github.com/Rorical/Ausmalbar/ui/styles"
)

const keyHints = "g generate · r regenerate · c confirm · x reject · e edit prompt · s system prompt · l reload · q quit"

// RenderInput shows the prompt editor while it has focus and the key hints otherwise.
func RenderInput(input string, editing bool, width int) string {
	if !editing {
		return styles.StatusStyle(width).Render(keyHints)
	}
	return styles.InputStyle(width).Render("Prompt: " + input + "▏")
}
