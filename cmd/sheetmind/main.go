// Package main provides the CLI entry point for sheetmind-go.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/oauth2"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/fetch"
	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/output"
)

var (
	apiKey      string
	accessToken string
	configPath  string
	outputPath  string
	pretty      bool
	mergeSheets bool
	sheetName   string
	verbose     bool

	logger *zap.Logger
)

// fileConfig is the YAML configuration file shape.
type fileConfig struct {
	APIKey         string   `yaml:"api_key"`
	ServiceAccount string   `yaml:"service_account"`
	Proxies        []string `yaml:"proxies"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetmind [source]",
		Short: "Normalize spreadsheet-shaped sources into a table",
		Long: `sheetmind ingests a Google Sheets URL, a workbook file (xlsx/csv),
or pasted HTML, and normalizes it into a single table (columns + rows)
as JSON. Image-bearing formulas are preserved, numeric date serials are
converted, and cross-spreadsheet references are reported.`,
		Args: cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: run,
	}

	rootCmd.Flags().StringVar(&apiKey, "api-key", "", "Public API key for reading shared spreadsheets")
	rootCmd.Flags().StringVar(&accessToken, "token", "", "OAuth access token for private spreadsheets")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file (api_key, service_account, proxies)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.Flags().BoolVar(&mergeSheets, "merge", false, "Merge all sheets into one table with a _sourceSheet column")
	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Select a single sheet by name")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ingestor := sheetmind.New(cfg, logger)
	opts := sheetmind.Options{
		Sheet:       sheetName,
		MergeSheets: mergeSheets,
	}
	if verbose {
		opts.Progress = func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\rloading... %3.0f%%", fraction*100)
			if fraction >= 1 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	result, err := ingest(cmd, ingestor, source, opts)
	if err != nil {
		return err
	}

	jsonData, err := output.TableToJSON(result.Table, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}

// ingest routes the source to the right entry point: URL, local file,
// pasted HTML, or plain pasted text.
func ingest(cmd *cobra.Command, ingestor *sheetmind.Ingestor, source string, opts sheetmind.Options) (*sheetmind.Result, error) {
	ctx := cmd.Context()

	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		var tokenSource oauth2.TokenSource
		if accessToken != "" {
			tokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		}
		result, err := ingestor.IngestURL(ctx, source, tokenSource, opts)
		if err != nil && fetch.IsKind(err, fetch.KindInvalidURL) {
			// Not a spreadsheet link; it may be a pasted image URL.
			return ingestor.IngestText(ctx, source, opts)
		}
		return result, err
	case fileExists(source):
		return ingestor.IngestFile(ctx, source, opts)
	case strings.Contains(source, "<table"):
		return ingestor.IngestHTML(ctx, source, opts)
	default:
		return ingestor.IngestText(ctx, source, opts)
	}
}

func loadConfig() (fetch.Config, error) {
	cfg := fetch.Config{APIKey: apiKey}
	if configPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = fc.APIKey
	}
	cfg.ServiceAccountEmail = fc.ServiceAccount
	cfg.ProxyURLs = fc.Proxies
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
