// Package main provides a CLI tool for generating bearer tokens for the privid API.
// These tokens use the dev signing key unless -key is given and will NOT work in production.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	jwttoken "privid/internal/jwt_token"
	"privid/internal/platform/config"
	id "privid/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer = "privid"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Principal string            `json:"principal"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	accessAddress := accessCmd.String("address", "", "Principal address (0x...). Random if empty.")
	accessTTL := accessCmd.Duration("ttl", config.TokenTTL, "Token time-to-live")
	accessKey := accessCmd.String("key", devSigningKey, "HS256 signing key")
	accessIssuer := accessCmd.String("issuer", defaultIssuer, "Token issuer")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)
	adminTTL := adminCmd.Duration("ttl", config.TokenTTL, "Token time-to-live")
	adminKey := adminCmd.String("key", devSigningKey, "HS256 signing key")
	adminIssuer := adminCmd.String("issuer", defaultIssuer, "Token issuer")
	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "access":
		_ = accessCmd.Parse(os.Args[2:])
		p := parseOrGeneratePrincipal(*accessAddress)
		generate(p, *accessKey, *accessIssuer, *accessTTL, *accessJSON)
	case "admin":
		_ = adminCmd.Parse(os.Args[2:])
		address := os.Getenv("ADMIN_ADDRESS")
		if address == "" {
			fmt.Fprintln(os.Stderr, "ADMIN_ADDRESS is not set")
			os.Exit(1)
		}
		generate(parseOrGeneratePrincipal(address), *adminKey, *adminIssuer, *adminTTL, *adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate bearer tokens for the privid API

WARNING: By default these tokens use the dev signing key and will NOT work in production.

Usage:
  tokengen <command> [flags]

Commands:
  access    Generate a token for a principal address
  admin     Generate a token for $ADMIN_ADDRESS

Examples:
  # Token for a random principal
  tokengen access

  # Token for a specific principal with custom TTL
  tokengen access -address 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed -ttl 1h

  # Admin token, JSON output
  ADMIN_ADDRESS=0x... tokengen admin -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generate(p id.Principal, key, issuer string, ttl time.Duration, jsonOutput bool) {
	svc := jwttoken.NewJWTService(key, issuer, ttl)
	token, err := svc.GenerateAccessToken(context.Background(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Principal: p.String(),
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Principal:  %s\n", p)
	fmt.Printf("Issuer:     %s\n", issuer)
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/v1/stats")
}

func parseOrGeneratePrincipal(input string) id.Principal {
	if input == "" {
		b := make([]byte, common.AddressLength)
		if _, err := rand.Read(b); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating address: %v\n", err)
			os.Exit(1)
		}
		return id.Principal(common.BytesToAddress(b))
	}
	p, err := id.ParsePrincipal(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid address %q: %v\n", input, err)
		os.Exit(1)
	}
	return p
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
