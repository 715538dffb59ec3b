package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sensiblebit/trustcheck"
)

// ListAliases reports every alias in the store in enumeration order. An
// empty store is reported, not an error.
func ListAliases(store *trustcheck.TrustStore) []Finding {
	aliases := store.Aliases()
	findings := []Finding{
		{Info, fmt.Sprintf("Aliases in truststore (%d):", len(aliases))},
	}
	for _, a := range aliases {
		findings = append(findings, Finding{Info, "  - " + a})
	}
	return findings
}

// CheckExpectedAliases tests each expected name for exact containment in
// the store's alias set. Misses are warnings; a clean sweep is a single OK
// finding. This check never fails the run.
func CheckExpectedAliases(store *trustcheck.TrustStore, expected []string) []Finding {
	aliasSet := make(map[string]bool)
	for _, a := range store.Aliases() {
		aliasSet[a] = true
	}

	var missing []string
	for _, want := range expected {
		want = strings.TrimSpace(want)
		if want == "" {
			continue
		}
		if !aliasSet[want] {
			missing = append(missing, want)
		}
	}

	if len(missing) > 0 {
		return []Finding{{Warn, fmt.Sprintf("Missing expected aliases: %s", strings.Join(missing, ", "))}}
	}
	return []Finding{{OK, "All expected aliases are present."}}
}

// CheckCertFiles verifies each external certificate file against the store
// by fingerprint identity. A missing or undecodable file is reported and
// skipped; it never aborts the remaining files. Matching is by canonical
// SHA-256 fingerprint against any entry, never by alias or filename.
func CheckCertFiles(store *trustcheck.TrustStore, paths []string) []Finding {
	findings := []Finding{{Info, "Validating external certificate files:"}}

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			findings = append(findings, Finding{Error, fmt.Sprintf("Certificate file does not exist: %s", path)})
			continue
		}

		cert, err := trustcheck.ParseCertificateFile(path)
		if err != nil {
			findings = append(findings, Finding{Error, fmt.Sprintf("Cannot decode %s: %v", path, err)})
			continue
		}

		fp := trustcheck.CertFingerprint(cert)
		subject := cert.Subject.String()
		if entry, found := store.FindByFingerprint(fp); found {
			slog.Debug("certificate file matched store entry", "path", path, "alias", entry.Alias)
			findings = append(findings, Finding{OK, fmt.Sprintf("%s: imported (Subject: %s)", path, subject)})
		} else {
			findings = append(findings, Finding{Error, fmt.Sprintf("%s: not found in truststore (Subject: %s)", path, subject)})
		}
	}
	return findings
}

// ReportProbe runs the TLS probe against host:port using the store's
// certificates as the only trust anchors and converts the outcome into
// findings.
func ReportProbe(ctx context.Context, store *trustcheck.TrustStore, host string, port int) ([]Finding, bool) {
	result, err := trustcheck.Probe(ctx, store, host, trustcheck.ProbeOptions{Port: port})
	if err != nil {
		return []Finding{{Error, fmt.Sprintf("TLS probe setup failed: %v", err)}}, false
	}
	return probeFindings(result, host, port), result.OK()
}

// ReportMozillaProbe repeats the probe against the embedded Mozilla roots.
// A success here after a truststore failure points at a missing trust
// anchor rather than a server-side problem.
func ReportMozillaProbe(ctx context.Context, host string, port int, storeProbeOK bool) []Finding {
	roots, err := trustcheck.MozillaRoots()
	if err != nil {
		return []Finding{{Error, fmt.Sprintf("Loading Mozilla roots: %v", err)}}
	}
	result := trustcheck.ProbeWithRoots(ctx, roots, host, trustcheck.ProbeOptions{Port: port})

	findings := []Finding{{Info, "Comparison probe against Mozilla roots:"}}
	findings = append(findings, probeFindings(result, host, port)...)
	if result.OK() && !storeProbeOK {
		findings = append(findings, Finding{Warn,
			"Handshake succeeds with Mozilla roots but not with the truststore; a trust anchor is likely missing from the truststore."})
	}
	return findings
}

func probeFindings(result *trustcheck.ProbeResult, host string, port int) []Finding {
	if result.OK() {
		f := Finding{OK, fmt.Sprintf("TLS handshake OK with %s:%d", host, port)}
		if result.PeerSubject != "" {
			return []Finding{f, {Info, fmt.Sprintf("  Peer subject: %s", result.PeerSubject)}}
		}
		return []Finding{f}
	}
	return []Finding{{Error, fmt.Sprintf("TLS %s with %s:%d: %v", result.Status, host, port, result.Err)}}
}
