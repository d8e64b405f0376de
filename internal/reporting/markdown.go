package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Deviation Report: %s\n\n", r.TargetDay))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Historical span: %s to %s\n\n", r.SpanStart, r.SpanEnd))

	// Deviation scores
	if len(r.Scores) > 0 {
		sb.WriteString("## Deviation Scores\n\n")
		sb.WriteString("| Market | Metric | Observed | Z-Score | Direction | N | Ref Median | Ref Dispersion |\n")
		sb.WriteString("|--------|--------|----------|---------|-----------|---|------------|----------------|\n")
		for _, s := range r.Scores {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %s | %s | %d | %.4f | %.4f |\n",
				s.Market, s.Metric, s.Observed, formatZ(s.ZScore), s.Direction,
				s.Samples, s.Median, s.Dispersion))
		}
		sb.WriteString("\n")
	}

	// Window volume
	if len(r.Volumes) > 0 {
		sb.WriteString(fmt.Sprintf("## Liquidation Window Volume (%s to %s)\n\n", r.WindowStart, r.WindowEnd))
		sb.WriteString("| Exchange | Spot USD | Futures USD | Combined USD |\n")
		sb.WriteString("|----------|----------|-------------|---------------|\n")
		for _, v := range r.Volumes {
			sb.WriteString(fmt.Sprintf("| %s | %.0f | %.0f | %.0f |\n",
				v.Exchange, v.SpotUSD, v.FuturesUSD, v.CombinedUSD))
		}
		sb.WriteString(fmt.Sprintf("| **TOTAL** | %.0f | %.0f | %.0f |\n\n",
			r.GrandTotal.SpotUSD, r.GrandTotal.FuturesUSD, r.GrandTotal.CombinedUSD))
	}

	// Ranking
	if len(r.Ranked) > 0 {
		sb.WriteString(fmt.Sprintf("## Most Extreme Markets by %s\n\n", r.RankingMetric))
		sb.WriteString("| Rank | Market | Value |\n")
		sb.WriteString("|------|--------|-------|\n")
		for _, row := range r.Ranked {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.4f |\n", row.Rank, row.Market, row.Value))
		}
		sb.WriteString("\n")
	}

	// Skipped markets
	if len(r.Skipped) > 0 {
		sb.WriteString("## Skipped Markets\n\n")
		sb.WriteString("| Pipeline | Market | Reason |\n")
		sb.WriteString("|----------|--------|--------|\n")
		for _, s := range r.Skipped {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", s.Pipeline, s.Market, s.Reason))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No markets were skipped.\n")
	}

	return sb.String()
}

// formatZ prints a z-score, spelling out the zero-dispersion sentinel.
func formatZ(z float64) string {
	if math.IsInf(z, 1) {
		return "+Inf (zero dispersion)"
	}
	if math.IsInf(z, -1) {
		return "-Inf (zero dispersion)"
	}
	return fmt.Sprintf("%.4f", z)
}
