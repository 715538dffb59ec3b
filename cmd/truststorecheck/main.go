package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sensiblebit/trustcheck"
	"github.com/sensiblebit/trustcheck/internal"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	logLevel       string
	jdkHome        string
	storePass      string
	configPath     string
	host           string
	port           int
	expected       []string
	certFiles      []string
	compareMozilla bool
)

var rootCmd = &cobra.Command{
	Use:   "truststorecheck",
	Short: "Diagnose a JDK truststore",
	Long: "Diagnose PKIX path building problems against an HTTPS service: locate the " +
		"JDK cacerts, list its aliases, verify expected trust anchors are present, " +
		"cross-check external certificate files by fingerprint, and test a live TLS " +
		"handshake using the truststore.",
	Example: `  truststorecheck --jdk /opt/openjdk-17 \
    --expected nosis,sectigo,usertrust \
    --certfiles nosis.cer,sectigo.cer \
    --host sac.example.com --port 443`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&jdkHome, "jdk", "", "JAVA_HOME directory")
	rootCmd.Flags().StringVar(&storePass, "storepass", "changeit", "Truststore password")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML expectations file")
	rootCmd.Flags().StringSliceVar(&expected, "expected", nil, "Expected aliases (comma-separated)")
	rootCmd.Flags().StringSliceVar(&certFiles, "certfiles", nil, "External certificate files to verify (comma-separated)")
	rootCmd.Flags().StringVar(&host, "host", "", "Remote host to probe over TLS")
	rootCmd.Flags().IntVar(&port, "port", 443, "Remote TLS port")
	rootCmd.Flags().BoolVar(&compareMozilla, "compare-mozilla", false, "Also probe with the embedded Mozilla roots for comparison")
	cobra.CheckErr(rootCmd.MarkFlagRequired("jdk"))
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	internal.SetupLogger(logLevel)

	report := &internal.Report{}
	symbols := isatty.IsTerminal(os.Stdout.Fd())
	fail := func(err error) error {
		report.Render(os.Stdout, symbols)
		return err
	}

	if configPath != "" {
		exp, err := internal.LoadExpectations(configPath)
		if err != nil {
			return fmt.Errorf("loading expectations: %w", err)
		}
		expected, certFiles, host, port, storePass = exp.Merge(expected, certFiles, host, port, storePass)
	}

	cacerts, found := trustcheck.FindCACerts(jdkHome)
	if !found {
		return fmt.Errorf("no cacerts/jssecacerts found under %s", jdkHome)
	}
	report.Infof("Using truststore: %s", cacerts)

	data, err := os.ReadFile(cacerts)
	if err != nil {
		return fail(fmt.Errorf("reading truststore: %w", err))
	}
	store, err := trustcheck.DecodeTrustStore(data, storePass)
	if err != nil {
		return fail(fmt.Errorf("%s", internal.DescribeDecodeError(cacerts, err)))
	}
	report.Infof("Truststore format: %s", store.Format)

	report.Add(internal.ListAliases(store)...)

	if len(expected) > 0 {
		report.Add(internal.CheckExpectedAliases(store, expected)...)
	}
	if len(certFiles) > 0 {
		report.Add(internal.CheckCertFiles(store, certFiles)...)
	}

	probeFailed := false
	if host != "" {
		findings, ok := internal.ReportProbe(cmd.Context(), store, host, port)
		report.Add(findings...)
		probeFailed = !ok
		if compareMozilla {
			report.Add(internal.ReportMozillaProbe(cmd.Context(), host, port, ok)...)
		}
	}

	report.Render(os.Stdout, symbols)
	if probeFailed {
		return fmt.Errorf("TLS handshake with %s:%d failed", host, port)
	}
	return nil
}
