// Package fxrates imports foreign-exchange reference rates from an HTML
// rates table (the format published by central-bank reference pages) so the
// FX scenario recomputation can run against live rates instead of the seeded
// ones.
package fxrates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cost_intelligence/pkg/core/dataset"
)

var codeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// ParseReferenceTable extracts currency -> rate pairs from an HTML document.
// It scans every table row and accepts rows whose first cell is an ISO 4217
// code and whose following cells contain a parseable rate. Thousand
// separators and decimal commas are tolerated.
func ParseReferenceTable(r io.Reader) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rates HTML: %w", err)
	}

	rates := make(map[string]float64)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		code := strings.ToUpper(strings.TrimSpace(cells.First().Text()))
		if !codeRe.MatchString(code) {
			return
		}
		// First numeric cell after the code wins.
		for i := 1; i < cells.Length(); i++ {
			rate, ok := parseRate(cells.Eq(i).Text())
			if ok {
				rates[code] = rate
				return
			}
		}
	})

	if len(rates) == 0 {
		return nil, fmt.Errorf("no reference rates found in document")
	}
	return rates, nil
}

func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	// European formatting: strip thousands dots when a decimal comma exists.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// FetchReferenceRates downloads and parses a reference-rate page.
func FetchReferenceRates(ctx context.Context, url string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates fetch returned status %d", resp.StatusCode)
	}
	return ParseReferenceTable(resp.Body)
}

// Apply restates every period's EUR rate to the reference EUR rate, so
// scenarios recompute against current market rates rather than the rates the
// periods were booked at. Returns true when a rate was applied.
func Apply(ds *dataset.Dataset, rates map[string]float64) bool {
	rate, ok := rates["EUR"]
	if !ok {
		return false
	}
	for i := range ds.Periods {
		ds.Periods[i].EURRate = rate
	}
	return true
}
