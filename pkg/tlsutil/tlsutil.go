// Package tlsutil loads TLS material for the lending gRPC server and for
// outbound HTTPS calls to verification providers.
package tlsutil

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/grpc/credentials"
)

// ErrPinMismatch is returned when a provider's leaf key matches no pin.
var ErrPinMismatch = errors.New("tlsutil: certificate public key is not pinned")

// ServerOptions configures TLS on the gRPC listener.
type ServerOptions struct {
	CertFile string
	KeyFile  string
	// ClientCAFile turns on mutual TLS: callers must present a certificate
	// issued by one of these CAs.
	ClientCAFile string
}

// ServerCredentials returns gRPC transport credentials for opts.
func ServerCredentials(opts ServerOptions) (credentials.TransportCredentials, error) {
	cfg, err := ServerConfig(opts)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

// ServerConfig builds the listener's *tls.Config.
func ServerConfig(opts ServerOptions) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	cfg := baseConfig()
	cfg.Certificates = []tls.Certificate{cert}

	if opts.ClientCAFile != "" {
		pool, err := loadPool(opts.ClientCAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

// ClientOptions configures outbound HTTPS to a verification provider.
type ClientOptions struct {
	// CAFile replaces the system roots when set.
	CAFile     string
	ServerName string
	// PinnedSPKI lists base64 SHA-256 digests of the provider's leaf public
	// key. When set, a leaf must match one in addition to chain verification.
	PinnedSPKI []string
}

// ClientConfig builds the *tls.Config for calls to a provider.
func ClientConfig(opts ClientOptions) (*tls.Config, error) {
	cfg := baseConfig()
	cfg.ServerName = opts.ServerName

	if opts.CAFile != "" {
		pool, err := loadPool(opts.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if len(opts.PinnedSPKI) > 0 {
		pins := make(map[string]struct{}, len(opts.PinnedSPKI))
		for _, pin := range opts.PinnedSPKI {
			sum, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pin))
			if err != nil || len(sum) != sha256.Size {
				return nil, fmt.Errorf("tlsutil: pin %q is not a base64 SHA-256 digest", pin)
			}
			pins[base64.StdEncoding.EncodeToString(sum)] = struct{}{}
		}
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return ErrPinMismatch
			}
			leaf := cs.PeerCertificates[0]
			if _, ok := pins[SPKIFingerprint(leaf)]; !ok {
				return fmt.Errorf("%w: %s", ErrPinMismatch, leaf.Subject)
			}
			return nil
		}
	}
	return cfg, nil
}

// SPKIFingerprint returns the base64 SHA-256 digest of cert's public key, the
// form accepted in ClientOptions.PinnedSPKI.
func SPKIFingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.RawSubjectPublicKeyInfo)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func baseConfig() *tls.Config {
	return &tls.Config{
		MinVersion:       tls.VersionTLS12,
		CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
	}
}

func loadPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("tlsutil: no certificates in %s", path)
	}
	return pool, nil
}
