package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"yovibe-events-scraper/internal/models"
	"yovibe-events-scraper/internal/pipeline"
	"yovibe-events-scraper/internal/services"
	"yovibe-events-scraper/internal/sources"
)

// LambdaEvent represents the EventBridge trigger event
type LambdaEvent struct {
	Source       string   `json:"source"`
	DetailType   string   `json:"detail-type"`
	TriggerType  string   `json:"trigger-type,omitempty"`  // manual, scheduled
	SourceFilter []string `json:"source-filter,omitempty"` // optional filter for specific sources
	WindowDays   int      `json:"window-days,omitempty"`   // 0 = unbounded
}

// LambdaResponse represents the function response
type LambdaResponse struct {
	Success        bool              `json:"success"`
	Message        string            `json:"message"`
	RunID          string            `json:"run_id"`
	ProcessingTime int64             `json:"processing_time_ms"`
	Report         *models.RunReport `json:"report"`
	Errors         []string          `json:"errors,omitempty"`
}

// HandleScrapingEvent is the main Lambda handler function
func HandleScrapingEvent(ctx context.Context, event LambdaEvent) (LambdaResponse, error) {
	start := time.Now()

	triggerType := event.TriggerType
	if triggerType == "" {
		if event.Source == "aws.events" {
			triggerType = "scheduled"
		} else {
			triggerType = "manual"
		}
	}
	log.Printf("Scrape triggered (%s)", triggerType)

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return LambdaResponse{
			Success:        false,
			Message:        fmt.Sprintf("Failed to load AWS config: %v", err),
			ProcessingTime: time.Since(start).Milliseconds(),
		}, err
	}

	s3Client, err := services.NewS3Client(ctx)
	if err != nil {
		return LambdaResponse{
			Success:        false,
			Message:        fmt.Sprintf("Failed to initialize S3 client: %v", err),
			ProcessingTime: time.Since(start).Milliseconds(),
		}, err
	}

	clients := pipeline.Clients{
		Fetcher: services.NewDocumentClient(),
		Store:   services.NewDynamoDBServiceFromEnv(dynamodb.NewFromConfig(awsCfg)),
		Blobs:   s3Client,
		Images:  services.NewImageClient(),
	}

	cfg := &sources.Config{WindowDays: event.WindowDays}
	srcs := filterSources(cfg.EffectiveSources(), event.SourceFilter)

	p := pipeline.New(clients, cfg.EffectiveKeywords(), cfg.Window())
	report := p.Run(ctx, srcs)

	response := LambdaResponse{
		Success: report.SuccessfulSources > 0,
		Message: fmt.Sprintf("Added %d events from %d/%d sources",
			report.TotalAdded, report.SuccessfulSources, report.TotalSources),
		RunID:          report.RunID,
		ProcessingTime: time.Since(start).Milliseconds(),
		Report:         report,
	}

	for _, s := range report.Summaries {
		if s.Error != "" {
			response.Errors = append(response.Errors, fmt.Sprintf("%s: %s", s.SourceURL, s.Error))
		}
	}

	log.Printf("Scrape completed: %s", response.Message)
	return response, nil
}

// filterSources restricts the run to the named sources, when a filter is set
func filterSources(srcs []sources.Source, filter []string) []sources.Source {
	if len(filter) == 0 {
		return srcs
	}

	var filtered []sources.Source
	for _, src := range srcs {
		for _, f := range filter {
			if src.Name == f || src.URL == f {
				filtered = append(filtered, src)
				break
			}
		}
	}
	return filtered
}

func main() {
	lambda.Start(HandleScrapingEvent)
}
