// Package reporting derives read-only summaries from the disbursement log.
// Nothing here runs on the admission path.
package reporting

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// UseCase is one bucket of the justification breakdown.
type UseCase struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

const CategoryOther = "Other"

type bucket struct {
	name     string
	keywords []string
}

// buckets are matched in order; the first hit wins.
var buckets = []bucket{
	{"Testing", []string{"test", "testing", "try", "experiment"}},
	{"Payment", []string{"payment", "pay", "transfer", "send"}},
	{"Smart Contract", []string{"contract", "deploy", "smart contract"}},
	{"Agent-to-Agent", []string{"agent", "a2a", "agent-to-agent"}},
	{"Hackathon", []string{"hackathon", "usdc", "competition", "project"}},
}

// Categorize classifies a justification by case-insensitive keyword match.
func Categorize(justification string) string {
	lower := strings.ToLower(justification)
	if strings.TrimSpace(lower) == "" {
		return CategoryOther
	}
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.name
			}
		}
	}
	return CategoryOther
}

// UseCases buckets justifications, omitting empty buckets, ordered by count
// descending with ties in bucket order. Percentages are rounded to one decimal.
func UseCases(justifications []string) []UseCase {
	counts := make(map[string]int, len(buckets)+1)
	for _, j := range justifications {
		counts[Categorize(j)]++
	}

	order := make([]string, 0, len(buckets)+1)
	for _, b := range buckets {
		order = append(order, b.name)
	}
	order = append(order, CategoryOther)

	total := decimal.NewFromInt(int64(max(len(justifications), 1)))
	out := []UseCase{}
	for _, name := range order {
		c := counts[name]
		if c == 0 {
			continue
		}
		out = append(out, UseCase{
			Category:   name,
			Count:      c,
			Percentage: decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(100)).Div(total).Round(1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
