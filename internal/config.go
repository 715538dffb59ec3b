package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Expectations is the optional YAML input for truststorecheck.
// Command-line flags take precedence over file values.
type Expectations struct {
	Expected  []string `yaml:"expected,omitempty"`
	CertFiles []string `yaml:"certfiles,omitempty"`
	Host      string   `yaml:"host,omitempty"`
	Port      int      `yaml:"port,omitempty"`
	StorePass string   `yaml:"storepass,omitempty"`
}

// LoadExpectations loads an expectations file.
func LoadExpectations(path string) (*Expectations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var exp Expectations
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parsing expectations file %s: %w", path, err)
	}
	return &exp, nil
}

// Merge overlays file values under explicitly supplied flag values and
// returns the effective inputs.
func (e *Expectations) Merge(expected, certFiles []string, host string, port int, storePass string) ([]string, []string, string, int, string) {
	if len(expected) == 0 {
		expected = e.Expected
	}
	if len(certFiles) == 0 {
		certFiles = e.CertFiles
	}
	if host == "" {
		host = e.Host
	}
	if port == 443 && e.Port != 0 {
		port = e.Port
	}
	if storePass == "changeit" && e.StorePass != "" {
		storePass = e.StorePass
	}
	return expected, certFiles, host, port, storePass
}
