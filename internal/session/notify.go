package session

import (
	"fmt"
	"io"
)

// BellNotifier rings the terminal bell and prints a line when rest ends.
// If the terminal swallows the bell the message still shows; write errors
// are ignored (notification is best-effort by contract).
type BellNotifier struct {
	Out io.Writer
}

func (b BellNotifier) RestComplete(exerciseName string) {
	if b.Out == nil {
		return
	}
	if exerciseName != "" {
		fmt.Fprintf(b.Out, "\a\nRest over, back to %s\n", exerciseName)
		return
	}
	fmt.Fprint(b.Out, "\a\nRest over\n")
}
