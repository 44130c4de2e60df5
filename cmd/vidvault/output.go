package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NamanBalaji/vidvault/internal/errors"
	"github.com/NamanBalaji/vidvault/internal/ui"
)

func printError(w io.Writer, err error) {
	msg := "Error: " + err.Error()
	if errors.Retryable(err) {
		msg += " (you can try again)"
	}

	fmt.Fprintln(w, ui.ErrorStyle.Render(msg))
}

// confirm asks a yes/no question on the command's input. --yes skips it.
func confirm(cmd *cobra.Command, yes bool, question string) bool {
	if yes {
		return true
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
