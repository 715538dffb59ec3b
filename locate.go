package trustcheck

import (
	"os"
	"path/filepath"
)

// cacertsCandidates lists the relative locations of a JDK trust anchor file
// in priority order. A site-installed jssecacerts overrides the stock
// cacerts, and pre-JDK9 layouts nest everything under jre/.
var cacertsCandidates = []string{
	filepath.Join("lib", "security", "jssecacerts"),
	filepath.Join("lib", "security", "cacerts"),
	filepath.Join("jre", "lib", "security", "jssecacerts"),
	filepath.Join("jre", "lib", "security", "cacerts"),
}

// FindCACerts returns the path of the first existing trust anchor file under
// jdkHome, probing the candidate locations in priority order. The second
// return value is false when none exist.
func FindCACerts(jdkHome string) (string, bool) {
	for _, rel := range cacertsCandidates {
		p := filepath.Join(jdkHome, rel)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}
