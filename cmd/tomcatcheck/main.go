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
	logLevel     string
	tomcatHome   string
	jdkHome      string
	keystorePath string
	storePass    string
	host         string
	port         int
)

var rootCmd = &cobra.Command{
	Use:   "tomcatcheck",
	Short: "Validate a Tomcat/JDK TLS setup",
	Long: "Validate a Tomcat installation's TLS configuration: installation paths, " +
		"JDK trust anchors, the server keystore, and an outbound TLS handshake " +
		"using the JDK truststore.",
	Example: `  tomcatcheck --tomcat /opt/tomcat --jdk /opt/openjdk-17 \
    --keystore /opt/tomcat/conf/server.p12 --host api.example.com`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&tomcatHome, "tomcat", "", "CATALINA_HOME directory")
	rootCmd.Flags().StringVar(&jdkHome, "jdk", "", "JAVA_HOME directory")
	rootCmd.Flags().StringVar(&keystorePath, "keystore", "", "Server keystore path (JKS or PKCS12)")
	rootCmd.Flags().StringVar(&storePass, "storepass", "changeit", "Truststore/keystore password")
	rootCmd.Flags().StringVar(&host, "host", "", "Remote host to probe over TLS")
	rootCmd.Flags().IntVar(&port, "port", 443, "Remote TLS port")
	cobra.CheckErr(rootCmd.MarkFlagRequired("tomcat"))
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

	// Missing installation paths are reported but do not abort the
	// remaining checks.
	f, _ := internal.CheckPath(tomcatHome, "Tomcat Home")
	report.Add(f)
	f, _ = internal.CheckPath(jdkHome, "Java Home")
	report.Add(f)

	cacerts, found := trustcheck.FindCACerts(jdkHome)
	if !found {
		return fail(fmt.Errorf("no cacerts/jssecacerts found under %s", jdkHome))
	}
	report.Infof("Using truststore: %s", cacerts)

	if keystorePath != "" {
		f, exists := internal.CheckPath(keystorePath, "Tomcat keystore")
		report.Add(f)
		if exists {
			findings, usable := internal.InspectKeystore(keystorePath, storePass)
			report.Add(findings...)
			if !usable {
				return fail(fmt.Errorf("keystore %s contains no usable entries", keystorePath))
			}
		}
	}

	probeFailed := false
	if host != "" {
		data, err := os.ReadFile(cacerts)
		if err != nil {
			return fail(fmt.Errorf("reading truststore: %w", err))
		}
		store, err := trustcheck.DecodeTrustStore(data, storePass)
		if err != nil {
			return fail(fmt.Errorf("%s", internal.DescribeDecodeError(cacerts, err)))
		}
		findings, ok := internal.ReportProbe(cmd.Context(), store, host, port)
		report.Add(findings...)
		probeFailed = !ok
	}

	report.Render(os.Stdout, symbols)
	if probeFailed {
		return fmt.Errorf("TLS handshake with %s:%d failed", host, port)
	}
	return nil
}
