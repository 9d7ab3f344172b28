// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Command punchlist-token manages the Ed25519 keys and bearer tokens
// that punchlist-server authenticates against.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/punchlist-io/punchlist/lib/identity"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return fmt.Errorf("subcommand required")
	}

	switch subcommand := os.Args[1]; subcommand {
	case "keygen":
		return runKeygen(os.Args[2:])
	case "mint":
		return runMint(os.Args[2:])
	case "verify":
		return runVerify(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand: %q", subcommand)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: punchlist-token <subcommand> [flags]

Subcommands:
  keygen   Generate an Ed25519 signing keypair
  mint     Mint a bearer token signed with a private key
  verify   Check a token against a public key and print its claims

Run 'punchlist-token <subcommand> --help' for subcommand flags.
`)
}

// runKeygen generates a fresh Ed25519 keypair. With --out the keys are
// written to <prefix>.key (0600) and <prefix>.pub; without it the
// private key goes to stderr and the public key to stdout, so shell
// captures of stdout never swallow the secret half.
func runKeygen(args []string) error {
	flags := pflag.NewFlagSet("punchlist-token keygen", pflag.ContinueOnError)
	outPrefix := flags.String("out", "", "write the keypair to <prefix>.key and <prefix>.pub")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	publicKey, privateKey, err := identity.GenerateKeypair()
	if err != nil {
		return err
	}

	if *outPrefix != "" {
		if err := identity.SaveKeypair(*outPrefix, publicKey, privateKey); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s.key and %s.pub\n", *outPrefix, *outPrefix)
		return nil
	}

	fmt.Fprintf(os.Stderr, "# Private key (keep this secret — store securely):\n")
	fmt.Fprintf(os.Stderr, "%s\n", base64.StdEncoding.EncodeToString(privateKey))
	fmt.Fprintf(os.Stdout, "%s\n", base64.StdEncoding.EncodeToString(publicKey))
	return nil
}

// runMint signs a bearer token for the given subject. The subject
// becomes the owner of every item the token creates, so minting two
// tokens with the same subject yields two handles to one tenant.
func runMint(args []string) error {
	flags := pflag.NewFlagSet("punchlist-token mint", pflag.ContinueOnError)
	keyPath := flags.String("key", "", "path to the Ed25519 private key (required)")
	subject := flags.String("subject", "", "subject claim: the owner identity (required)")
	audience := flags.String("audience", "punchlist", "audience claim the server expects")
	ttl := flags.Duration("ttl", 24*time.Hour, "token lifetime; 0 mints a non-expiring token")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *keyPath == "" {
		return fmt.Errorf("mint: --key is required")
	}
	if *subject == "" {
		return fmt.Errorf("mint: --subject is required")
	}

	privateKey, err := identity.LoadPrivateKey(*keyPath)
	if err != nil {
		return err
	}

	now := time.Now()
	token := &identity.Token{
		Subject:  *subject,
		Audience: *audience,
		ID:       uuid.NewString(),
		IssuedAt: now.Unix(),
	}
	if *ttl > 0 {
		token.ExpiresAt = now.Add(*ttl).Unix()
	}

	encoded, err := identity.Mint(privateKey, token)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, encoded)
	return nil
}

// runVerify checks a token the way the server would and prints the
// decoded claims as JSON. Exit status 1 means the server would have
// rejected it.
func runVerify(args []string) error {
	flags := pflag.NewFlagSet("punchlist-token verify", pflag.ContinueOnError)
	publicKeyPath := flags.String("pub", "", "path to the Ed25519 public key (required)")
	encoded := flags.String("token", "", "bearer token to verify (required)")
	audience := flags.String("audience", "punchlist", "audience claim the token must carry")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *publicKeyPath == "" {
		return fmt.Errorf("verify: --pub is required")
	}
	if *encoded == "" {
		return fmt.Errorf("verify: --token is required")
	}

	publicKey, err := identity.LoadPublicKey(*publicKeyPath)
	if err != nil {
		return err
	}

	token, err := identity.Verify(publicKey, *encoded, *audience)
	if err != nil {
		return err
	}

	claims, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding claims: %w", err)
	}
	fmt.Fprintf(os.Stdout, "%s\n", claims)
	return nil
}
