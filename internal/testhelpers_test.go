package internal

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/sensiblebit/trustcheck"
)

// generateTestCert creates a self-signed CA certificate.
func generateTestCert(t *testing.T, cn string) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert
}

// buildStore assembles an in-memory truststore from alias/cert pairs.
func buildStore(aliases []string, certs []*x509.Certificate) *trustcheck.TrustStore {
	ts := &trustcheck.TrustStore{Format: trustcheck.FormatJKS}
	for i, alias := range aliases {
		ts.Entries = append(ts.Entries, trustcheck.Entry{Alias: alias, Raw: certs[i].Raw})
	}
	return ts
}

// writeJKSFile stores certs as trusted entries in a JKS file on disk.
func writeJKSFile(t *testing.T, path, password string, aliases []string, certs []*x509.Certificate) {
	t.Helper()

	ks := keystore.New()
	for i, alias := range aliases {
		ks.SetTrustedCertificateEntry(alias, keystore.TrustedCertificateEntry{
			CreationTime: time.Now(),
			Certificate:  keystore.Certificate{Type: "X.509", Content: certs[i].Raw},
		})
	}
	var buf bytes.Buffer
	if err := ks.Store(&buf, []byte(password)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

// writeCertFile writes a certificate to dir in PEM form and returns its path.
func writeCertFile(t *testing.T, dir, name string, cert *x509.Certificate) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(trustcheck.CertToPEM(cert)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// messages flattens findings for containment assertions.
func messages(findings []Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

// containsSubstring reports whether any string in list contains sub.
func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
