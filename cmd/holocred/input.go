// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// terminalFd returns the descriptor of in when it is an interactive terminal.
func terminalFd(in io.Reader) (int, bool) {
	f, ok := in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd()) //nolint:gosec // descriptors fit in int
	return fd, isTerminal(fd)
}

// readSecret reads one secret. On a terminal it prompts on stderr and reads
// without echo; otherwise it reads a single line from the command's input.
// Only the line terminator is removed.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()

	if fd, ok := terminalFd(in); ok {
		w := cmd.ErrOrStderr()
		_, _ = fmt.Fprint(w, prompt)
		secret, err := readPassword(fd)
		_, _ = fmt.Fprintln(w)
		if err != nil {
			return "", oops.Code("CLI_INPUT_FAILED").
				With("source", "terminal").
				Wrap(err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", oops.Code("CLI_INPUT_FAILED").
			With("source", "stdin").
			Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readNewPassword reads a new password, asking for confirmation when the
// input is a terminal.
func readNewPassword(cmd *cobra.Command) (string, error) {
	password, err := readSecret(cmd, "New password: ")
	if err != nil {
		return "", err
	}

	if _, ok := terminalFd(cmd.InOrStdin()); !ok {
		return password, nil
	}

	confirm, err := readSecret(cmd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", oops.Code("CLI_CONFIRMATION_MISMATCH").
			Errorf("passwords do not match")
	}
	return password, nil
}
