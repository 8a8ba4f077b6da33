package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"yovibe-events-scraper/internal/models"
	"yovibe-events-scraper/internal/pipeline"
	"yovibe-events-scraper/internal/services"
	"yovibe-events-scraper/internal/sources"
)

var (
	flagConfig     string
	flagSource     string
	flagWindowDays int
	flagDryRun     bool
	flagJSON       bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Scrape event listings into the YoVibe store",
		Long: `Scrapes the configured event-listing sites, filters listings for
enjoyment events in the admissible window, deduplicates against the store,
and persists new events and venues.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config (keywords, window, source overrides)")
	cmd.Flags().StringVar(&flagSource, "source", "", "Run only the named source")
	cmd.Flags().IntVar(&flagWindowDays, "window-days", -1, "Override recency window in days (0 = unbounded)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would be admitted without writing anything")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Print the run report as JSON")

	cmd.AddCommand(newSourcesCmd())

	return cmd
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the effective source adapters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sources.LoadConfig(flagConfig)
			if err != nil {
				return err
			}
			for _, src := range cfg.EffectiveSources() {
				state := "enabled"
				if !src.Enabled {
					state = "disabled"
				}
				fetch := "static"
				if src.Render {
					fetch = "rendered"
				}
				fmt.Printf("%-20s %-8s %-9s %s\n", src.Name, state, fetch, src.URL)
			}
			return nil
		},
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := sources.LoadConfig(flagConfig)
	if err != nil {
		return err
	}
	if flagWindowDays >= 0 {
		cfg.WindowDays = flagWindowDays
	}

	srcs := cfg.EffectiveSources()
	if flagSource != "" {
		var filtered []sources.Source
		for _, src := range srcs {
			if src.Name == flagSource || src.URL == flagSource {
				filtered = append(filtered, src)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("no source named %q", flagSource)
		}
		srcs = filtered
	}

	clients, err := buildClients(ctx)
	if err != nil {
		return err
	}

	p := pipeline.New(clients, cfg.EffectiveKeywords(), cfg.Window(), pipeline.WithDryRun(flagDryRun))
	report := p.Run(ctx, srcs)

	if flagJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printReport(report)
	return nil
}

// buildClients wires the real collaborators: DynamoDB store, S3 blobs, HTTP
// document and image fetchers
func buildClients(ctx context.Context) (pipeline.Clients, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return pipeline.Clients{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client, err := services.NewS3Client(ctx)
	if err != nil {
		return pipeline.Clients{}, err
	}

	return pipeline.Clients{
		Fetcher: services.NewDocumentClient(),
		Store:   services.NewDynamoDBServiceFromEnv(dynamodb.NewFromConfig(awsCfg)),
		Blobs:   s3Client,
		Images:  services.NewImageClient(),
	}, nil
}

func printReport(report *models.RunReport) {
	fmt.Println("\n--- Scrape Summary ---")
	for _, s := range report.Summaries {
		fmt.Printf("Site: %s\n", s.SourceURL)
		fmt.Printf("  Added events: %d\n", s.AddedEvents)
		fmt.Printf("  Skipped events: %d\n", s.Skipped)
		fmt.Printf("  New venues: %d\n", s.NewVenues)
		if s.Error != "" {
			fmt.Printf("  Error: %s\n", s.Error)
		}
	}
	fmt.Printf("Run %s: %d added, %d skipped, %d new venues across %d sources (%d failed)\n",
		report.RunID, report.TotalAdded, report.TotalSkipped, report.TotalNewVenues,
		report.TotalSources, report.FailedSources)
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
