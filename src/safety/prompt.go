package safety

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Options carries the non-interactive escape hatch for prompts.
type Options struct {
	// Yes answers every prompt affirmatively without asking.
	Yes bool
}

// Confirm prompts the user to confirm a destructive action (rewriting an
// existing database in place). If opts.Yes is true it returns true without
// prompting. The caller decides what to do with the result.
func Confirm(opts Options, in io.Reader, out io.Writer, question string) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if out != nil {
		fmt.Fprintf(out, "%s [y/N]: ", strings.TrimSpace(question))
	}
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	ans := strings.TrimSpace(strings.ToLower(line))
	return ans == "y" || ans == "yes", nil
}
