package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"printshop/internal/collection"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// confirmer returns the stdin-backed confirmation gate, or one that always
// approves when --yes was given.
func (e *env) confirmer(cmd *cobra.Command) collection.Confirmer {
	if e.assumeYes {
		return collection.Always
	}
	out := cmd.ErrOrStderr()
	return collection.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := e.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

func (e *env) readLine() (string, error) {
	line, err := e.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ask prompts for a value when a flag was left empty.
func (e *env) ask(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	return e.readLine()
}

// askSecret reads a password without echo when stdin is a terminal.
func (e *env) askSecret(cmd *cobra.Command, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}
	return e.ask(cmd, label)
}
