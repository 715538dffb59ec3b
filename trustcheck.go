// Package trustcheck provides the certificate and Java-keystore plumbing
// behind the tomcatcheck and truststorecheck diagnostic tools: truststore
// decoding, canonical fingerprinting, and live TLS probing.
package trustcheck

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/smallstep/pkcs7"
)

// ParsePEMCertificates parses all certificates from a PEM bundle.
func ParsePEMCertificates(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificates found in PEM data")
	}
	return certs, nil
}

// ParseCertificatesAny attempts to parse certificates from raw bytes, trying
// PEM first (may contain multiple certs), then DER (single cert, common for
// .cer exports), then certs-only PKCS#7 (.p7b/.p7c).
func ParseCertificatesAny(data []byte) ([]*x509.Certificate, error) {
	certs, pemErr := ParsePEMCertificates(data)
	if pemErr == nil {
		return certs, nil
	}
	cert, derErr := x509.ParseCertificate(data)
	if derErr == nil {
		return []*x509.Certificate{cert}, nil
	}
	certs, p7Err := DecodePKCS7(data)
	if p7Err == nil {
		return certs, nil
	}
	return nil, fmt.Errorf("not PEM (%v) or DER (%v) or PKCS#7 (%v)", pemErr, derErr, p7Err)
}

// ParseCertificateFile reads a certificate file in PEM, DER, or PKCS#7
// encoding and returns the first certificate it contains.
func ParseCertificateFile(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	certs, err := ParseCertificatesAny(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return certs[0], nil
}

// DecodePKCS7 decodes a DER-encoded PKCS#7 bundle and returns the certificates it contains.
func DecodePKCS7(derData []byte) ([]*x509.Certificate, error) {
	p7, err := pkcs7.Parse(derData)
	if err != nil {
		return nil, fmt.Errorf("parsing PKCS#7: %w", err)
	}
	if len(p7.Certificates) == 0 {
		return nil, errors.New("PKCS#7 bundle contains no certificates")
	}
	return p7.Certificates, nil
}

// CertToPEM encodes a certificate as PEM.
func CertToPEM(cert *x509.Certificate) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	}))
}

// IsPEM returns true if the data appears to contain PEM-encoded content.
func IsPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// ColonHex formats a byte slice as colon-separated uppercase hex.
func ColonHex(b []byte) string {
	h := strings.ToUpper(hex.EncodeToString(b))
	parts := make([]string, 0, len(h)/2)
	for i := 0; i < len(h); i += 2 {
		end := min(i+2, len(h))
		parts = append(parts, h[i:end])
	}
	return strings.Join(parts, ":")
}

// FingerprintSHA256 returns the canonical fingerprint of DER-encoded
// certificate bytes: the uppercase hex SHA-256 digest in colon-separated
// two-character groups (AA:BB:CC:...). Fingerprints are the sole identity
// used when matching certificates; subjects are informational only.
func FingerprintSHA256(der []byte) string {
	hash := sha256.Sum256(der)
	return ColonHex(hash[:])
}

// CertFingerprint returns the canonical SHA-256 fingerprint of a parsed
// certificate. PEM and DER encodings of the same certificate normalize to
// identical fingerprints since both hash the raw DER.
func CertFingerprint(cert *x509.Certificate) string {
	return FingerprintSHA256(cert.Raw)
}
