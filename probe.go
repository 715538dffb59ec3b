package trustcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/breml/rootcerts/embedded"
)

// ProbeStatus is the terminal state of a TLS probe.
type ProbeStatus int

const (
	ProbeSuccess ProbeStatus = iota
	ProbeConnectFailed
	ProbeHandshakeFailed
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeSuccess:
		return "success"
	case ProbeConnectFailed:
		return "connect failed"
	case ProbeHandshakeFailed:
		return "handshake failed"
	default:
		return "unknown"
	}
}

// ProbeResult reports the outcome of one TLS probe. Failures are data, not
// errors: Err carries the underlying cause when Status is not ProbeSuccess.
type ProbeResult struct {
	Status      ProbeStatus
	PeerSubject string
	Err         error
}

// OK reports whether the handshake completed and the peer verified.
func (r *ProbeResult) OK() bool {
	return r.Status == ProbeSuccess
}

// ProbeOptions configures a TLS probe.
type ProbeOptions struct {
	// Port is the remote TCP port. Defaults to 443.
	Port int
	// Timeout bounds both the TCP connect and the TLS handshake. Defaults
	// to 5 seconds.
	Timeout time.Duration
	// BundleDir is the directory for the temporary trust anchor bundle.
	// Defaults to the system temp directory.
	BundleDir string
}

func (o ProbeOptions) withDefaults() ProbeOptions {
	if o.Port == 0 {
		o.Port = 443
	}
	if o.Timeout == 0 {
		o.Timeout = 5 * time.Second
	}
	return o
}

// Probe exports the store's certificates to a temporary PEM bundle, uses
// that bundle as the sole set of trusted roots, and performs a TLS
// handshake against host with server-name verification. The bundle file is
// removed before Probe returns on every path. Setup failures (writing or
// reading the bundle, empty store) return an error; network and validation
// failures are reported in the result.
func Probe(ctx context.Context, store *TrustStore, host string, opts ProbeOptions) (*ProbeResult, error) {
	opts = opts.withDefaults()

	bundle, err := writeAnchorBundle(store, opts.BundleDir)
	if err != nil {
		return nil, err
	}
	defer os.Remove(bundle)

	roots, err := loadAnchorBundle(bundle)
	if err != nil {
		return nil, err
	}
	return ProbeWithRoots(ctx, roots, host, opts), nil
}

// ProbeWithRoots performs a TLS probe trusting only the given root pool.
func ProbeWithRoots(ctx context.Context, roots *x509.CertPool, host string, opts ProbeOptions) *ProbeResult {
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	dialer := &net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(opts.Port)))
	if err != nil {
		return &ProbeResult{Status: ProbeConnectFailed, Err: err}
	}
	defer conn.Close()

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName: host,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return &ProbeResult{Status: ProbeHandshakeFailed, Err: err}
	}
	defer tlsConn.Close()

	result := &ProbeResult{Status: ProbeSuccess}
	if peers := tlsConn.ConnectionState().PeerCertificates; len(peers) > 0 {
		result.PeerSubject = peers[0].Subject.String()
	}
	return result
}

// writeAnchorBundle re-encodes every store entry as PEM into a single
// temporary file and returns its path. The caller owns removal.
func writeAnchorBundle(store *TrustStore, dir string) (string, error) {
	if len(store.Entries) == 0 {
		return "", errors.New("truststore has no entries to export")
	}

	tmp, err := os.CreateTemp(dir, "trustcheck-anchors-*.pem")
	if err != nil {
		return "", fmt.Errorf("creating anchor bundle: %w", err)
	}

	for _, e := range store.Entries {
		cert, err := e.Certificate()
		if err != nil {
			continue
		}
		if _, err := tmp.WriteString(CertToPEM(cert)); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", fmt.Errorf("writing anchor bundle: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing anchor bundle: %w", err)
	}
	return tmp.Name(), nil
}

// loadAnchorBundle reads a PEM bundle back into a certificate pool.
func loadAnchorBundle(path string) (*x509.CertPool, error) {
	pemData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading anchor bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemData) {
		return nil, fmt.Errorf("no usable certificates in anchor bundle %s", path)
	}
	return pool, nil
}

// MozillaRoots returns a pool of the embedded Mozilla CA certificates, used
// by the comparison probe to tell missing-anchor failures apart from
// server-side problems.
func MozillaRoots() (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(embedded.MozillaCACertificatesPEM())) {
		return nil, errors.New("parsing embedded Mozilla root certificates")
	}
	return pool, nil
}
