// Command lendingctl bundles the development chores around lendingd: issuing
// borrower tokens, generating keys and certificates, and running migrations.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	pgRepo "github.com/nikhilpunky/manaja2/internal/infrastructure/persistence/postgres"
	"github.com/nikhilpunky/manaja2/pkg/auth"
	pkgpostgres "github.com/nikhilpunky/manaja2/pkg/postgres"
	"github.com/nikhilpunky/manaja2/pkg/tlsutil"
)

const usage = `usage: lendingctl <command> [flags]

commands:
  token     issue a JWT for a user
  keys      generate an RSA key pair for JWT signing
  certs     generate a development CA and server certificate
  migrate   apply (up) or roll back (down) the database schema
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "lendingctl:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}
	switch args[0] {
	case "token":
		return issueToken(args[1:], out)
	case "keys":
		return generateKeys(args[1:], out)
	case "certs":
		return generateCerts(args[1:], out)
	case "migrate":
		return migrate(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func issueToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "user ID placed in the subject claim")
	roles := fs.String("roles", auth.RoleBorrower, "comma-separated roles")
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "HMAC secret")
	keyFile := fs.String("private-key", "", "PEM RSA private key; overrides -secret")
	issuer := fs.String("issuer", "lending", "issuer claim")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := auth.JWTConfig{Secret: *secret, Issuer: *issuer, Expiration: *ttl}
	if *keyFile != "" {
		pem, err := auth.LoadKeyFromFile(*keyFile)
		if err != nil {
			return err
		}
		cfg.PrivateKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := svc.IssueToken(*user, splitList(*roles)...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func generateKeys(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	dir := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	privPEM, pubPEM, err := auth.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	privPath := filepath.Join(*dir, "jwt-private.pem")
	pubPath := filepath.Join(*dir, "jwt-public.pem")
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil { //nolint:gosec // public key
		return err
	}
	_, err = fmt.Fprintf(out, "wrote %s and %s\n", privPath, pubPath)
	return err
}

func generateCerts(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certs", flag.ContinueOnError)
	dir := fs.String("out", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := tlsutil.GenerateSelfSignedCert(splitList(*hosts), *dir); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "wrote development certificates to %s\n", *dir)
	return err
}

func migrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dsn := fs.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("migrate: -dsn or DATABASE_URL is required")
	}

	direction := "up"
	if fs.NArg() > 0 {
		direction = fs.Arg(0)
	}
	var err error
	switch direction {
	case "up":
		err = pkgpostgres.RunMigrations(*dsn, pgRepo.Migrations, pgRepo.MigrationsDir)
	case "down":
		err = pkgpostgres.RunMigrationsDown(*dsn, pgRepo.Migrations, pgRepo.MigrationsDir)
	default:
		return fmt.Errorf("migrate: unknown direction %q", direction)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "migrations %s complete\n", direction)
	return err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
