package clientutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptSecret reads a value from stdin without echoing it, falling
// back to a plain read when stdin isn't a terminal (piped input, CI).
func PromptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ResolveCronSecret tries, in order: an explicit flag value, the
// CRON_SECRET environment variable, a previously saved secret file, and
// finally a masked terminal prompt — the last result is saved for next
// time so the operator only types it once per machine.
func ResolveCronSecret(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if env := strings.TrimSpace(os.Getenv("CRON_SECRET")); env != "" {
		return env, nil
	}
	if stored, err := LoadSecret(); err == nil {
		return stored.CronSecret, nil
	}
	secret, err := PromptSecret("Cron secret")
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("cron secret is required")
	}
	_ = SaveSecret(StoredSecret{CronSecret: secret})
	return secret, nil
}
