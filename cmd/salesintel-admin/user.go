package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/salesintel/sales-intelligence-api/internal/core/ports"
)

// Test seams for the terminal.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

var errPasswordMismatch = errors.New("passwords do not match")

// promptPassword reads the password without echo when stdin is a terminal,
// asking twice. Piped input is read as a single line.
func promptPassword(stdin io.Reader, w io.Writer) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !isTerminal(int(f.Fd())) {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(f.Fd())
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}

// createUser registers the account through the same path as the HTTP API so
// validation, hashing and uniqueness rules are identical.
func createUser(ctx context.Context, svc ports.AuthService, email, name, role, password string, w io.Writer) error {
	res, err := svc.Register(ctx, ports.RegisterInput{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     role,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "created %s user %s (%s)\n", res.User.Role, res.User.Email, res.User.ID)
	return nil
}
