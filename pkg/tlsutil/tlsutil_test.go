package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devCerts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, dir))
	return dir
}

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	block, _ := pem.Decode(data)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

// handshake runs one TLS handshake over loopback TCP and returns the server
// and client errors.
func handshake(t *testing.T, serverCfg, clientCfg *tls.Config) (serverErr, clientErr error) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()

	errc := make(chan error, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer conn.Close()
		errc <- tls.Server(conn, serverCfg).Handshake()
	}()

	conn, clientErr := tls.Dial("tcp", lis.Addr().String(), clientCfg)
	if clientErr == nil {
		_ = conn.Close()
	}
	return <-errc, clientErr
}

func TestGenerateSelfSignedCert(t *testing.T) {
	dir := devCerts(t)

	for _, name := range []string{CAFile, CAKeyFile, ServerCertFile, ServerKeyFile, ClientCertFile, ClientKeyFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	ca := readCert(t, filepath.Join(dir, CAFile))
	server := readCert(t, filepath.Join(dir, ServerCertFile))
	client := readCert(t, filepath.Join(dir, ClientCertFile))
	assert.True(t, ca.IsCA)
	assert.Equal(t, []string{"localhost"}, server.DNSNames)
	require.Len(t, server.IPAddresses, 1)
	assert.NoError(t, server.CheckSignatureFrom(ca))
	assert.NoError(t, client.CheckSignatureFrom(ca))
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, client.ExtKeyUsage)
	assert.NotEqual(t, server.SerialNumber, client.SerialNumber)

	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestServerCredentials(t *testing.T) {
	dir := devCerts(t)

	creds, err := ServerCredentials(ServerOptions{
		CertFile: filepath.Join(dir, ServerCertFile),
		KeyFile:  filepath.Join(dir, ServerKeyFile),
	})
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	_, err = ServerCredentials(ServerOptions{CertFile: "nope.pem", KeyFile: "nope-key.pem"})
	assert.Error(t, err)

	_, err = ServerCredentials(ServerOptions{
		CertFile:     filepath.Join(dir, ServerCertFile),
		KeyFile:      filepath.Join(dir, ServerKeyFile),
		ClientCAFile: filepath.Join(dir, "missing.pem"),
	})
	assert.Error(t, err)
}

func TestHandshake(t *testing.T) {
	dir := devCerts(t)
	serverOpts := ServerOptions{
		CertFile: filepath.Join(dir, ServerCertFile),
		KeyFile:  filepath.Join(dir, ServerKeyFile),
	}
	clientConfig := func(t *testing.T, pins ...string) *tls.Config {
		t.Helper()
		cfg, err := ClientConfig(ClientOptions{
			CAFile:     filepath.Join(dir, CAFile),
			ServerName: "localhost",
			PinnedSPKI: pins,
		})
		require.NoError(t, err)
		return cfg
	}

	t.Run("server TLS trusted through the CA file", func(t *testing.T) {
		serverCfg, err := ServerConfig(serverOpts)
		require.NoError(t, err)

		serverErr, clientErr := handshake(t, serverCfg, clientConfig(t))
		require.NoError(t, clientErr)
		require.NoError(t, serverErr)
	})

	t.Run("pinned leaf key accepted", func(t *testing.T) {
		serverCfg, err := ServerConfig(serverOpts)
		require.NoError(t, err)
		pin := SPKIFingerprint(readCert(t, filepath.Join(dir, ServerCertFile)))

		_, clientErr := handshake(t, serverCfg, clientConfig(t, pin))
		require.NoError(t, clientErr)
	})

	t.Run("unpinned leaf key refused", func(t *testing.T) {
		serverCfg, err := ServerConfig(serverOpts)
		require.NoError(t, err)
		pin := SPKIFingerprint(readCert(t, filepath.Join(dir, CAFile)))

		_, clientErr := handshake(t, serverCfg, clientConfig(t, pin))
		assert.ErrorIs(t, clientErr, ErrPinMismatch)
	})

	t.Run("mutual TLS refuses a caller without a certificate", func(t *testing.T) {
		opts := serverOpts
		opts.ClientCAFile = filepath.Join(dir, CAFile)
		serverCfg, err := ServerConfig(opts)
		require.NoError(t, err)
		assert.Equal(t, tls.RequireAndVerifyClientCert, serverCfg.ClientAuth)

		serverErr, _ := handshake(t, serverCfg, clientConfig(t))
		assert.Error(t, serverErr)
	})

	t.Run("mutual TLS accepts the dev client certificate", func(t *testing.T) {
		opts := serverOpts
		opts.ClientCAFile = filepath.Join(dir, CAFile)
		serverCfg, err := ServerConfig(opts)
		require.NoError(t, err)

		clientCert, err := tls.LoadX509KeyPair(filepath.Join(dir, ClientCertFile), filepath.Join(dir, ClientKeyFile))
		require.NoError(t, err)
		cfg := clientConfig(t)
		cfg.Certificates = []tls.Certificate{clientCert}

		serverErr, clientErr := handshake(t, serverCfg, cfg)
		require.NoError(t, clientErr)
		require.NoError(t, serverErr)
	})
}

func TestClientConfig(t *testing.T) {
	t.Run("system pool", func(t *testing.T) {
		cfg, err := ClientConfig(ClientOptions{})
		require.NoError(t, err)
		assert.Nil(t, cfg.RootCAs)
		assert.Nil(t, cfg.VerifyConnection)
		assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	})

	t.Run("bad CA file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := ClientConfig(ClientOptions{CAFile: path})
		assert.Error(t, err)

		_, err = ClientConfig(ClientOptions{CAFile: filepath.Join(t.TempDir(), "missing.pem")})
		assert.Error(t, err)
	})

	t.Run("malformed pin", func(t *testing.T) {
		_, err := ClientConfig(ClientOptions{PinnedSPKI: []string{"c2hvcnQ="}})
		assert.Error(t, err)

		_, err = ClientConfig(ClientOptions{PinnedSPKI: []string{"%%%"}})
		assert.Error(t, err)
	})
}
