package internal

import (
	"errors"
	"fmt"
	"os"

	"github.com/sensiblebit/trustcheck"
)

// CheckPath reports whether a required installation path exists.
func CheckPath(path, desc string) (Finding, bool) {
	if _, err := os.Stat(path); err != nil {
		return Finding{Error, fmt.Sprintf("%s does not exist: %s", desc, path)}, false
	}
	return Finding{OK, fmt.Sprintf("%s exists: %s", desc, path)}, true
}

// InspectKeystore loads an operator-supplied server keystore and lists its
// aliases. The boolean reports whether the store holds at least one usable
// entry; a valid but empty keystore is a configuration error for a server.
func InspectKeystore(path, password string) ([]Finding, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return []Finding{{Error, fmt.Sprintf("Cannot read keystore %s: %v", path, err)}}, false
	}

	store, err := trustcheck.DecodeTrustStore(data, password)
	if err != nil {
		return []Finding{{Error, DescribeDecodeError(path, err)}}, false
	}

	findings := []Finding{{Info, fmt.Sprintf("Aliases in keystore %s:", path)}}
	for _, alias := range store.Aliases() {
		findings = append(findings, Finding{Info, "  - " + alias})
	}
	if len(store.Entries) == 0 {
		findings = append(findings, Finding{Error, "Keystore contains no usable entries."})
		return findings, false
	}
	return findings, true
}

// DescribeDecodeError renders a keystore decode failure with the wrong
// password and unknown format cases kept distinct.
func DescribeDecodeError(path string, err error) string {
	switch {
	case errors.Is(err, trustcheck.ErrWrongPassword):
		return fmt.Sprintf("Wrong password for %s", path)
	case errors.Is(err, trustcheck.ErrUnknownFormat):
		return fmt.Sprintf("%s is not a valid JKS or PKCS12 keystore", path)
	default:
		return fmt.Sprintf("Cannot decode %s: %v", path, err)
	}
}
