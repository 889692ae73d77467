// Package report renders a batch analysis result into human-facing
// formats: a markdown digest for webhook/chat delivery and a plain text
// summary for logs and the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RylynnLai/trading-tips/internal/contracts"
)

// ToJSON serializes the batch result for API consumers and archival.
func ToJSON(result *contracts.BatchResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// Markdown renders the full digest: ranked recommendations with their
// reasons, target ladder, stop loss and outlook, followed by the skipped
// symbols. Recommendations arrive already sorted by the scorer.
func Markdown(result *contracts.BatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Recommendations (%s)\n\n", result.Date.Format("2006-01-02"))

	if len(result.Recommendations) == 0 {
		b.WriteString("No recommendations today.\n")
	} else {
		fmt.Fprintf(&b, "%d recommendation(s).\n\n", len(result.Recommendations))
		fmt.Fprintf(&b, "| # | Symbol | Strategy | Score | Price |\n")
		fmt.Fprintf(&b, "|---|--------|----------|-------|-------|\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %.2f |\n",
				i+1, rec.Symbol, rec.Strategy, rec.Score, rec.CurrentPrice)
		}
		b.WriteString("\n")

		for i, rec := range result.Recommendations {
			writeRecommendation(&b, i+1, &rec)
		}
	}

	if len(result.Skipped) > 0 {
		b.WriteString("## Skipped\n\n")
		for _, s := range result.Skipped {
			if s.Detail != "" {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", s.Symbol, s.Reason, s.Detail)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", s.Symbol, s.Reason)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeRecommendation(b *strings.Builder, rank int, rec *contracts.Recommendation) {
	fmt.Fprintf(b, "## %d. %s — %s (score %d)\n\n", rank, rec.Symbol, rec.Strategy, rec.Score)
	fmt.Fprintf(b, "Current price: %.2f\n\n", rec.CurrentPrice)

	if rec.EntrySignal != "" {
		fmt.Fprintf(b, "**Entry**: %s\n\n", rec.EntrySignal)
	}
	if rec.HoldSignal != "" {
		fmt.Fprintf(b, "**Hold**: %s\n\n", rec.HoldSignal)
	}

	if len(rec.Reasons) > 0 {
		b.WriteString("**Reasons**\n\n")
		for _, reason := range rec.Reasons {
			fmt.Fprintf(b, "- %s\n", reason)
		}
		b.WriteString("\n")
	}

	if len(rec.Targets) > 0 {
		b.WriteString("**Targets**\n\n")
		for _, t := range rec.Targets {
			fmt.Fprintf(b, "- T%d: %.2f (+%.1f%%, %s)\n", t.Level, t.Price, t.GainPct, t.Source)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "**Stop loss**: %.2f (-%.1f%%, %s)\n\n",
		rec.StopLoss.Price, rec.StopLoss.Pct*100, rec.StopLoss.Basis)

	if rec.Prediction != nil {
		writePrediction(b, rec.Prediction)
	}
}

func writePrediction(b *strings.Builder, p *contracts.Prediction) {
	b.WriteString("**Outlook**\n\n")
	fmt.Fprintf(b, "- Success rate: %.0f%%\n", p.SuccessRate*100)
	fmt.Fprintf(b, "- Holding period: %d-%d days (target %d)\n",
		p.Holding.MinDays, p.Holding.MaxDays, p.Holding.TargetDays)
	for _, t := range p.Targets {
		fmt.Fprintf(b, "- T%d %.2f: %.0f%% chance\n", t.Level, t.Price, t.Probability*100)
	}
	for _, check := range p.ExitChecks {
		if check.Triggered {
			fmt.Fprintf(b, "- ⚠️ Exit check triggered: %s (%s)\n", check.Name, check.Condition)
		}
	}
	b.WriteString("\n")
}

// Summary renders a compact one-screen text version for logs and the CLI.
func Summary(result *contracts.BatchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Recommendations (%s) ===\n", result.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Recommended: %d, Skipped: %d\n", len(result.Recommendations), len(result.Skipped))

	for i, rec := range result.Recommendations {
		fmt.Fprintf(&b, "  %d. %-8s %-16s score=%-3d price=%.2f stop=%.2f\n",
			i+1, rec.Symbol, rec.Strategy, rec.Score, rec.CurrentPrice, rec.StopLoss.Price)
	}

	for _, s := range result.Skipped {
		fmt.Fprintf(&b, "  skip %s: %s\n", s.Symbol, s.Reason)
	}

	return b.String()
}
