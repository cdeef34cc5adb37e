// Package wizard provides the interactive terminal setup for the optimizer
// client. Invoke with: optimizer setup
package wizard

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Answers holds the values collected during setup.
type Answers struct {
	RelayURL   string
	AccessKey  string
	DebounceMs int
}

var stdinReader = bufio.NewReader(os.Stdin)

// Run walks the user through the client settings, using the given values as
// defaults shown in each prompt.
func Run(defaults Answers) (Answers, error) {
	fmt.Println("optimizer setup")
	fmt.Println("Press Enter to keep the value shown in brackets.")
	fmt.Println()

	a := defaults

	url, err := promptLine(fmt.Sprintf("Relay URL [%s]: ", defaults.RelayURL))
	if err != nil {
		return a, err
	}
	if url != "" {
		a.RelayURL = strings.TrimRight(url, "/")
	}

	key, err := promptSecret("Relay access key (hidden, empty for none): ")
	if err != nil {
		return a, err
	}
	if key != "" {
		a.AccessKey = key
	}

	debounce, err := promptLine(fmt.Sprintf("Live-count debounce in ms [%d]: ", defaults.DebounceMs))
	if err != nil {
		return a, err
	}
	if debounce != "" {
		n, err := strconv.Atoi(debounce)
		if err != nil || n <= 0 {
			return a, fmt.Errorf("wizard.Run: debounce must be a positive integer, got %q", debounce)
		}
		a.DebounceMs = n
	}

	return a, nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("wizard.promptLine: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal, falling back to
// a plain read when it is not (pipes, CI).
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return promptLine("")
	}
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("wizard.promptSecret: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
