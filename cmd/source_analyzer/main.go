package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"yovibe-events-scraper/internal/services"
)

// source_analyzer is an operator tool: fetch a listing page and ask the
// analyzer to propose a selector map for it. The output is YAML ready to
// paste into the scraper config's sources list.
func main() {
	var (
		url     = flag.String("url", "", "Listing page URL to analyze (required)")
		name    = flag.String("name", "", "Source name for the generated config block")
		timeout = flag.Duration("timeout", 60*time.Second, "Fetch and analysis timeout")
	)
	flag.Parse()

	if *url == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *name == "" {
		*name = *url
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	html, err := fetchHTML(ctx, *url)
	if err != nil {
		log.Fatalf("Failed to fetch %s: %v", *url, err)
	}
	log.Printf("Fetched %d bytes from %s", len(html), *url)

	analyzer := services.NewOpenAIClient()
	suggestion, err := analyzer.SuggestSelectors(ctx, html, *url)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	block := map[string]interface{}{
		"sources": []map[string]interface{}{
			{
				"name":      *name,
				"url":       *url,
				"selectors": suggestion.Selectors,
			},
		},
	}

	out, err := yaml.Marshal(block)
	if err != nil {
		log.Fatalf("Failed to encode suggestion: %v", err)
	}

	fmt.Println(string(out))
	if len(suggestion.DateSamples) > 0 {
		fmt.Println("# Date samples seen on the page (define date_grammars for these):")
		for _, sample := range suggestion.DateSamples {
			fmt.Printf("#   %q\n", sample)
		}
	}
	if suggestion.Notes != "" {
		fmt.Printf("# Notes: %s\n", suggestion.Notes)
	}
}

func fetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
