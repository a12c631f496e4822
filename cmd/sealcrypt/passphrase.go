package main

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"golang.org/x/term"

	"github.com/sealcrypt/sealcrypt"
)

func getPassword(prompt string) ([]byte, error) {
	// First check environment variable
	if envPass := os.Getenv(PasswordEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	return readPassword(prompt)
}

func getPasswordWithConfirm(prompt, confirmPrompt string) ([]byte, error) {
	if envPass := os.Getenv(PasswordEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	password, err := readPassword(prompt)
	if err != nil {
		return nil, err
	}

	confirm, err := readPassword(confirmPrompt)
	if err != nil {
		sealcrypt.Wipe(password)
		return nil, err
	}

	if !bytes.Equal(password, confirm) {
		sealcrypt.Wipe(password)
		sealcrypt.Wipe(confirm)
		return nil, fmt.Errorf("passwords do not match")
	}

	sealcrypt.Wipe(confirm)
	return password, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	var password []byte
	var err error

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err = term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
	} else {
		// STDIN is piped; fall back to the controlling terminal.
		tty, ttyErr := os.Open("/dev/tty")
		if ttyErr != nil {
			if runtime.GOOS == "windows" {
				return nil, fmt.Errorf("password must be set via %s environment variable when STDIN is piped", PasswordEnvVar)
			}
			return nil, fmt.Errorf("cannot read password: STDIN is piped and /dev/tty is not available. Set %s environment variable", PasswordEnvVar)
		}
		defer tty.Close()

		password, err = term.ReadPassword(int(tty.Fd()))
		fmt.Fprintln(os.Stderr)
	}

	if err != nil {
		return nil, err
	}
	return password, nil
}
