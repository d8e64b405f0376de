package reporting

import (
	"fmt"
	"strings"
)

// RenderScoresCSV renders deviation scores as CSV string.
func RenderScoresCSV(rows []ScoreRow) string {
	var sb strings.Builder

	sb.WriteString("market,metric,observed,z_score,direction,samples,ref_median,ref_dispersion\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%f,%s,%d,%.6f,%.6f\n",
			r.Market,
			r.Metric,
			r.Observed,
			r.ZScore,
			r.Direction,
			r.Samples,
			r.Median,
			r.Dispersion,
		))
	}

	return sb.String()
}

// RenderVolumesCSV renders per-exchange window volume as CSV string.
func RenderVolumesCSV(rows []VolumeRow, grand VolumeRow) string {
	var sb strings.Builder

	sb.WriteString("exchange,spot_usd,futures_usd,combined_usd\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%.2f,%.2f\n",
			r.Exchange, r.SpotUSD, r.FuturesUSD, r.CombinedUSD))
	}
	sb.WriteString(fmt.Sprintf("TOTAL,%.2f,%.2f,%.2f\n",
		grand.SpotUSD, grand.FuturesUSD, grand.CombinedUSD))

	return sb.String()
}

// RenderRankedCSV renders the target-day ranking as CSV string.
func RenderRankedCSV(metric string, rows []RankedRow) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("rank,market,%s\n", metric))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%.6f\n", r.Rank, r.Market, r.Value))
	}

	return sb.String()
}

// RenderSeriesCSV renders an aggregated cross-market series as CSV string.
func RenderSeriesCSV(rows []SeriesRow) string {
	var sb strings.Builder

	sb.WriteString("timestamp_ms,value,market_count\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%d,%.6f,%d\n", r.TimestampMs, r.Value, r.MarketCount))
	}

	return sb.String()
}
