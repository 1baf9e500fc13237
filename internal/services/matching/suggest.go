package matching

import (
	"math"
	"strings"
	"unicode/utf8"

	"supplier-pricing-backend/internal/models"
)

const (
	DefaultSKUColumn      = models.ColSKU
	DefaultQuantityColumn = models.ColQuantity

	// minimum header similarity (0-100) for a fuzzy suggestion
	suggestThreshold = 80.0
)

// pricePreferences are tried in order when guessing the price column.
var pricePreferences = []string{models.CustomerPriceBase, "Price"}

// Suggestion holds the default column picks for one sheet.
type Suggestion struct {
	Columns     []string `json:"columns"`
	SKUColumn   string   `json:"sku_column"`
	QtyColumn   string   `json:"quantity_column"`
	PriceColumn string   `json:"price_column"`
}

// Suggest picks SKU, quantity and price columns from a sheet header.
func Suggest(columns []string) Suggestion {
	return Suggestion{
		Columns:     columns,
		SKUColumn:   SuggestColumn(columns, DefaultSKUColumn),
		QtyColumn:   SuggestColumn(columns, DefaultQuantityColumn),
		PriceColumn: SuggestPriceColumn(columns),
	}
}

// SuggestColumn finds the header best matching want: exact name, then
// case-insensitive containment, then the closest header by token similarity.
// Returns "" when nothing is close enough.
func SuggestColumn(columns []string, want string) string {
	for _, c := range columns {
		if c == want {
			return c
		}
	}
	lw := strings.ToLower(want)
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c), lw) {
			return c
		}
	}

	best, bestScore := "", 0.0
	for _, c := range columns {
		if score := computeNameSimilarity(c, want); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= suggestThreshold {
		return best
	}
	return ""
}

// SuggestPriceColumn prefers a customer price column, then anything mentioning price.
func SuggestPriceColumn(columns []string) string {
	for _, pref := range pricePreferences {
		lp := strings.ToLower(pref)
		for _, c := range columns {
			if strings.Contains(strings.ToLower(c), lp) {
				return c
			}
		}
	}
	return ""
}

// computeNameSimilarity scores how well header covers the tokens of want (0-100).
func computeNameSimilarity(header, want string) float64 {
	hTokens := strings.Fields(normalizeName(header))
	wTokens := strings.Fields(normalizeName(want))

	if len(wTokens) == 0 {
		return 0
	}

	totalScore := 0.0

	for _, wTok := range wTokens {
		best := 0.0
		for _, hTok := range hTokens {
			dist := levenshtein(wTok, hTok)
			maxLen := math.Max(float64(utf8.RuneCountInString(wTok)), float64(utf8.RuneCountInString(hTok)))
			sim := 1 - float64(dist)/maxLen
			if sim > best {
				best = sim
			}
		}
		totalScore += best
	}

	return (totalScore / float64(len(wTokens))) * 100
}

func normalizeName(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.TrimSpace(s)
	return s
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	dp := make([][]int, len(ra)+1)
	for i := range dp {
		dp[i] = make([]int, len(rb)+1)
	}

	for i := 0; i <= len(ra); i++ {
		dp[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			dp[i][j] = min(
				dp[i-1][j]+1,
				dp[i][j-1]+1,
				dp[i-1][j-1]+cost,
			)
		}
	}
	return dp[len(ra)][len(rb)]
}
