package trustcheck

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// Format identifies the container encoding of a decoded truststore.
type Format int

const (
	FormatJKS Format = iota
	FormatPKCS12
)

func (f Format) String() string {
	switch f {
	case FormatJKS:
		return "JKS"
	case FormatPKCS12:
		return "PKCS12"
	default:
		return "unknown"
	}
}

var (
	// ErrWrongPassword indicates the container format was recognized but the
	// store password failed integrity or decryption checks.
	ErrWrongPassword = errors.New("wrong keystore password")
	// ErrUnknownFormat indicates the data is not a JKS or PKCS#12 container.
	ErrUnknownFormat = errors.New("not a valid JKS or PKCS12 keystore")

	// errFormatMismatch is the internal "not this format" signal that moves
	// decoding on to the next container format. Any other decoder error is
	// terminal.
	errFormatMismatch = errors.New("container format mismatch")
)

// Entry is one certificate entry in a decoded truststore. Raw holds the DER
// encoding; subject and fingerprint are derived from it on demand.
type Entry struct {
	Alias string
	Raw   []byte
}

// Certificate parses the entry's DER bytes.
func (e Entry) Certificate() (*x509.Certificate, error) {
	cert, err := x509.ParseCertificate(e.Raw)
	if err != nil {
		return nil, fmt.Errorf("parsing entry %q: %w", e.Alias, err)
	}
	return cert, nil
}

// Subject returns the entry certificate's subject distinguished name, or an
// empty string if the DER bytes do not parse.
func (e Entry) Subject() string {
	cert, err := e.Certificate()
	if err != nil {
		return ""
	}
	return cert.Subject.String()
}

// Fingerprint returns the canonical SHA-256 fingerprint of the entry's DER bytes.
func (e Entry) Fingerprint() string {
	return FingerprintSHA256(e.Raw)
}

// TrustStore is an in-memory decoded keystore/truststore. Entries preserve
// container enumeration order and are never mutated after load.
type TrustStore struct {
	Format  Format
	Entries []Entry
}

// Aliases returns the alias of every entry in enumeration order.
func (ts *TrustStore) Aliases() []string {
	aliases := make([]string, 0, len(ts.Entries))
	for _, e := range ts.Entries {
		aliases = append(aliases, e.Alias)
	}
	return aliases
}

// FindByFingerprint returns the first entry whose canonical fingerprint
// matches fp exactly. Matching is by certificate identity, never by alias.
func (ts *TrustStore) FindByFingerprint(fp string) (Entry, bool) {
	for _, e := range ts.Entries {
		if e.Fingerprint() == fp {
			return e, true
		}
	}
	return Entry{}, false
}

// CertPool builds an x509.CertPool from every parseable entry.
func (ts *TrustStore) CertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	for _, e := range ts.Entries {
		if cert, err := e.Certificate(); err == nil {
			pool.AddCert(cert)
		}
	}
	return pool
}

// decoder is one container format attempt. Returning errFormatMismatch
// (possibly wrapped) hands decoding to the next format in the priority
// list; every other error is terminal.
type decoder interface {
	name() string
	decode(data []byte, password string) (*TrustStore, error)
}

// DecodeTrustStore decodes keystore bytes with the given password,
// auto-detecting the container format. JKS is attempted first, then
// PKCS#12. A wrong password is reported as ErrWrongPassword; data matching
// no known container is reported as ErrUnknownFormat. An empty but valid
// store decodes successfully with zero entries.
func DecodeTrustStore(data []byte, password string) (*TrustStore, error) {
	decoders := []decoder{jksDecoder{}, pkcs12Decoder{}}
	for _, d := range decoders {
		ts, err := d.decode(data, password)
		if err == nil {
			return ts, nil
		}
		if errors.Is(err, errFormatMismatch) {
			continue
		}
		return nil, fmt.Errorf("decoding %s keystore: %w", d.name(), err)
	}
	return nil, ErrUnknownFormat
}

// jksMagic is the big-endian file magic of a Java KeyStore.
var jksMagic = []byte{0xFE, 0xED, 0xFE, 0xED}

type jksDecoder struct{}

func (jksDecoder) name() string { return "JKS" }

func (jksDecoder) decode(data []byte, password string) (*TrustStore, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], jksMagic) {
		return nil, errFormatMismatch
	}

	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		// keystore-go reports a store-password mismatch as a digest
		// verification failure.
		if strings.Contains(err.Error(), "digest") {
			return nil, fmt.Errorf("%w: %v", ErrWrongPassword, err)
		}
		return nil, fmt.Errorf("loading JKS: %w", err)
	}

	ts := &TrustStore{Format: FormatJKS}
	for _, alias := range ks.Aliases() {
		if ks.IsTrustedCertificateEntry(alias) {
			entry, err := ks.GetTrustedCertificateEntry(alias)
			if err != nil {
				continue
			}
			ts.Entries = append(ts.Entries, Entry{Alias: alias, Raw: entry.Certificate.Content})
		}

		if ks.IsPrivateKeyEntry(alias) {
			entry, err := ks.GetPrivateKeyEntry(alias, []byte(password))
			if err != nil {
				continue
			}
			if len(entry.CertificateChain) > 0 {
				ts.Entries = append(ts.Entries, Entry{Alias: alias, Raw: entry.CertificateChain[0].Content})
			}
		}
	}
	return ts, nil
}

type pkcs12Decoder struct{}

func (pkcs12Decoder) name() string { return "PKCS12" }

func (pkcs12Decoder) decode(data []byte, password string) (*TrustStore, error) {
	certs, tsErr := gopkcs12.DecodeTrustStore(data, password)
	if tsErr == nil {
		return pkcs12Store(certs), nil
	}
	if errors.Is(tsErr, gopkcs12.ErrIncorrectPassword) {
		return nil, fmt.Errorf("%w: %v", ErrWrongPassword, tsErr)
	}

	// Key-bearing stores (e.g. a Tomcat server keystore) are not trust
	// stores; retry as a certificate-and-key chain.
	_, leaf, caCerts, chainErr := gopkcs12.DecodeChain(data, password)
	if chainErr == nil {
		all := make([]*x509.Certificate, 0, len(caCerts)+1)
		if leaf != nil {
			all = append(all, leaf)
		}
		return pkcs12Store(append(all, caCerts...)), nil
	}
	if errors.Is(chainErr, gopkcs12.ErrIncorrectPassword) {
		return nil, fmt.Errorf("%w: %v", ErrWrongPassword, chainErr)
	}

	return nil, fmt.Errorf("%w: %v", errFormatMismatch, tsErr)
}

// pkcs12Store wraps decoded certificates in a TrustStore. go-pkcs12 does not
// surface PKCS#12 friendlyName attributes, so aliases are synthesized from
// the subject common name, falling back to a positional entry-N name.
func pkcs12Store(certs []*x509.Certificate) *TrustStore {
	ts := &TrustStore{Format: FormatPKCS12}
	for i, cert := range certs {
		alias := strings.ToLower(cert.Subject.CommonName)
		if alias == "" {
			alias = fmt.Sprintf("entry-%d", i+1)
		}
		ts.Entries = append(ts.Entries, Entry{Alias: alias, Raw: cert.Raw})
	}
	return ts
}
