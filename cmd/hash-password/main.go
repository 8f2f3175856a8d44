package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/service"
	"golang.org/x/term"
)

const minPasswordLength = 8

// hash-password prompts for the admin password and prints a bcrypt hash
// suitable for ADMIN_PASSWORD.
func main() {
	cfg := config.Load()

	password, err := readPassword("Enter admin password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if len(password) < minPasswordLength {
		fmt.Fprintf(os.Stderr, "Error: password must be at least %d characters\n", minPasswordLength)
		os.Exit(1)
	}

	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading password:", err)
		os.Exit(1)
	}
	if !bytes.Equal(password, confirm) {
		fmt.Fprintln(os.Stderr, "Error: passwords do not match")
		os.Exit(1)
	}

	hash, err := service.HashPassword(string(password), cfg.BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	return term.ReadPassword(int(syscall.Stdin))
}
