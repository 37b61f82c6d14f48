// Command sign signs admin login challenges with the private key whose public
// half the comment server is configured with.
//
// With -server it runs the whole exchange and prints the issued token.
// Otherwise it reads base64 challenges from stdin and prints signatures.
package main

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/archive-comments/internal/api"
	"github.com/debemdeboas/archive-comments/internal/auth"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func main() {
	keyFile := flag.String("key", "privkey.pem", "Ed25519 private key (PKCS#8 PEM)")
	server := flag.String("server", "", "Comment server to log in to, e.g. http://localhost:12600")
	flag.Parse()

	privKey, err := auth.LoadPrivateKey(*keyFile)
	if err != nil {
		fmt.Println(errorStyle.Render("Error loading private key: " + err.Error()))
		os.Exit(1)
	}

	if *server != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		token, err := login(ctx, api.New(*server), privKey)
		if err != nil {
			fmt.Println(errorStyle.Render("Login failed: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(outputStyle.Render("Token: " + token))
		return
	}

	if err := repl(os.Stdin, os.Stdout, privKey); err != nil {
		fmt.Println("Error reading input:", err)
	}
}

// login fetches a challenge, signs it and trades the signature for a token.
func login(ctx context.Context, client *api.Client, key ed25519.PrivateKey) (string, error) {
	challenge, err := client.Challenge(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch challenge: %w", err)
	}
	return client.VerifyAdmin(ctx, ed25519.Sign(key, challenge))
}

// repl signs each pasted challenge until EOF or "quit".
func repl(in io.Reader, out io.Writer, key ed25519.PrivateKey) error {
	fmt.Fprintln(out, "Paste challenges from /auth/challenge one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("Enter challenge (base64): "))
		if !scanner.Scan() {
			break
		}

		challengeB64 := strings.TrimSpace(scanner.Text())
		if challengeB64 == "" {
			continue
		}
		if challengeB64 == "quit" {
			break
		}

		challenge, err := base64.StdEncoding.DecodeString(challengeB64)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: invalid base64"))
			continue
		}

		signature := ed25519.Sign(key, challenge)
		fmt.Fprintln(out, outputStyle.Render("Signature: "+base64.StdEncoding.EncodeToString(signature)))
	}
	return scanner.Err()
}
