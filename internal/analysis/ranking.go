package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/perpliq/perpliq/internal/domain"
)

// insufficientLiquidityNote annotates ranking rows whose venue could not
// absorb the full clip size.
const insufficientLiquidityNote = "insufficient liquidity"

// RankBySize reorganizes per-venue analyses into one ranking table per clip
// size. The size set is the union of all sizes present across the analyses;
// failed venues contribute no rows. Within each size, venues sort ascending
// by total cost; venues that could not fill (or whose cost is not computable)
// sort after every filled venue while keeping any computed values for
// display. Cost ties break alphabetically by exchange name so the ordering
// is deterministic run to run.
func RankBySize(analyses []domain.VenueAnalysis) map[int64]domain.RankingTable {
	sizes := make(map[int64]struct{})
	for _, a := range analyses {
		for size := range a.Slippage {
			sizes[size] = struct{}{}
		}
	}

	out := make(map[int64]domain.RankingTable, len(sizes))
	for size := range sizes {
		var table domain.RankingTable
		for _, a := range analyses {
			m, ok := a.Slippage[size]
			if !ok {
				continue
			}
			entry := domain.RankingEntry{
				Exchange:     a.Exchange,
				SlippageBps:  m.SlippageBps,
				TakerFeeBps:  m.TakerFeeBps,
				TotalCostBps: m.TotalCostBps,
				Filled:       m.Filled,
			}
			if !m.Filled || m.TotalCostBps == nil {
				entry.Note = insufficientLiquidityNote
			}
			table = append(table, entry)
		}

		sort.SliceStable(table, func(i, j int) bool {
			ci, cj := sortCost(table[i]), sortCost(table[j])
			if ci != cj {
				return ci < cj
			}
			return table[i].Exchange < table[j].Exchange
		})
		for i := range table {
			table[i].Rank = i + 1
		}
		out[size] = table
	}

	return out
}

// sortCost returns the ordering key for a ranking entry: the total cost for
// filled venues, +infinity otherwise. The entry's displayed values are left
// untouched.
func sortCost(e domain.RankingEntry) float64 {
	if !e.Filled || e.TotalCostBps == nil {
		return maxCost
	}
	return *e.TotalCostBps
}

// maxCost stands in for +infinity without dragging NaN semantics into the
// comparator.
const maxCost = 1e18

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

// RenderText renders a ranking table as aligned monospaced lines: medal for
// the top three, rank, exchange, and the human-readable cost breakdown.
func RenderText(table domain.RankingTable) string {
	var b strings.Builder
	for _, e := range table {
		medal := medals[e.Rank]
		if medal == "" {
			medal = "  "
		}
		fmt.Fprintf(&b, "%s #%-2d %-15s %s\n", medal, e.Rank, e.Exchange, costBreakdown(e))
	}
	return b.String()
}

// costBreakdown formats "{total} bps (slippage {s} + taker fee {f})" with the
// insufficient-liquidity annotation where it applies. Display rounding to two
// decimals happens here and nowhere earlier.
func costBreakdown(e domain.RankingEntry) string {
	if e.TotalCostBps == nil || e.SlippageBps == nil {
		return insufficientLiquidityNote
	}
	s := fmt.Sprintf("%.2f bps (slippage %.2f + taker fee %.2f)",
		*e.TotalCostBps, *e.SlippageBps, e.TakerFeeBps)
	if e.Note != "" {
		s += " * " + e.Note
	}
	return s
}

// RenderReportText renders every ranking table of a report, smallest clip
// size first, with a "$Nk" header per table.
func RenderReportText(r *domain.Report) string {
	sizes := make([]int64, 0, len(r.Rankings))
	for size := range r.Rankings {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	var b strings.Builder
	for _, size := range sizes {
		fmt.Fprintf(&b, "$%s\n", FormatClipSize(size))
		b.WriteString(RenderText(r.Rankings[size]))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatClipSize renders a USD notional in the compact "10k" / "1.5k" form
// used by ranking headers.
func FormatClipSize(size int64) string {
	if size%1000 == 0 {
		return fmt.Sprintf("%dk", size/1000)
	}
	return fmt.Sprintf("%.1fk", float64(size)/1000)
}
