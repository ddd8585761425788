package cmdutils

import (
	"fmt"

	"github.com/ait-tooling/ait/internal/bus"
	"github.com/ait-tooling/ait/internal/schema"
)

const logo = "🤖"

func PrintResponse(text string) {
	if text == "" {
		return
	}

	fmt.Printf("\n%s ait\n%s\n\n", logo, text)
}

// PrintNotification renders one dialog message the way the REPL shows it:
// assistant answers as a response block, everything else as a single line.
func PrintNotification(msg bus.DialogMessage) {
	switch msg.Role {
	case schema.RoleAssistant:
		PrintResponse(msg.Message)
	case schema.RoleUser:
		// echoed by the terminal already
	default:
		fmt.Printf("  ↳ %s\n", msg.Message)
		if msg.Extended != "" {
			fmt.Printf("    %s\n", msg.Extended)
		}
	}
}
