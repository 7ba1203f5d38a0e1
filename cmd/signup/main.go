package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/felipeejunges/currency-converter-front/internal/api"
	"github.com/felipeejunges/currency-converter-front/internal/format"
	"github.com/felipeejunges/currency-converter-front/internal/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address")
	firstName := fs.String("first", "", "First name")
	lastName := fs.String("last", "", "Last name")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	apiURL := fs.String("api", "http://localhost:8080", "Base URL of the currency API")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *firstName == "" || *lastName == "" {
		fmt.Fprintln(stdout, "Usage: signup -email <email> -first <name> -last <name> [-password <password>] [-api <url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email, first, last")
	}

	if !format.IsValidEmail(*email) {
		return fmt.Errorf("invalid email address: %s", *email)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if ok, _ := format.ValidatePassword(password); !ok {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	// Allow overriding the API URL via env var when the flag default is used
	if url := os.Getenv("API_URL"); url != "" && *apiURL == "http://localhost:8080" {
		*apiURL = url
	}

	client := api.NewClient(*apiURL, nil)
	resp, err := client.Register(context.Background(), api.RegisterRequest{
		Email:                *email,
		Password:             password,
		PasswordConfirmation: password,
		FirstName:            *firstName,
		LastName:             *lastName,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	message := resp.Message
	if message == "" {
		message = session.DefaultRegisterMessage
	}
	fmt.Fprintf(stdout, "Account created for %s: %s\n", *email, message)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
