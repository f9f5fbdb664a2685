package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// indicator is one vocabulary token. Multi-character ASCII tokens match on
// word boundaries; single-character symbols and localized tokens match by
// plain containment (word boundaries are meaningless for both).
type indicator struct {
	token string
	re    *regexp.Regexp // nil means containment match
}

func compileIndicators(tokens []string) []indicator {
	out := make([]indicator, 0, len(tokens))
	for _, t := range tokens {
		ind := indicator{token: t}
		if utf8.RuneCountInString(t) > 1 && isASCII(t) {
			ind.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
		}
		out = append(out, ind)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func (in indicator) matches(text string) bool {
	if in.re != nil {
		return in.re.MatchString(text)
	}
	return strings.Contains(text, in.token)
}

// Label-side vocabulary: estate terms, appellation and regulatory marks,
// grape varieties, and unit markers commonly printed on wine labels.
var labelIndicators = compileIndicators([]string{
	"château", "chateau", "domaine", "estate", "winery", "vineyard",
	"bodega", "weingut", "cantina", "tenuta",
	"appellation", "contrôlée", "controlee", "denominación", "denominazione",
	"cru", "grand cru", "premier cru", "grand vin",
	"aoc", "aop", "doc", "docg", "igt", "ava",
	"reserve", "reserva", "riserva", "gran reserva",
	"vintage", "mis en bouteille", "product of",
	"cabernet", "merlot", "chardonnay", "pinot", "sauvignon", "syrah",
	"shiraz", "riesling", "grenache", "tempranillo", "malbec", "zinfandel",
	"nebbiolo", "sangiovese", "gewürztraminer",
	"vol", "alc", "ml", "cl",
	"와인", "포도주",
})

// Receipt-side vocabulary: totals, payment terms, currency symbols, and
// store-type words, with Korean equivalents.
var receiptIndicators = compileIndicators([]string{
	"total", "subtotal", "tax", "vat", "receipt", "invoice",
	"cash", "card", "credit", "debit", "change", "payment",
	"qty", "quantity", "amount", "price", "item",
	"store", "market", "mart", "shop", "supermarket", "liquor",
	"합계", "총액", "소계", "부가세", "카드", "현금", "영수증", "결제",
	"수량", "마트", "매장",
	"$", "€", "£", "₩", "¥", "원",
})

// Bonus-trigger token subsets. Matching any token in a set earns that
// set's bonus once.
var (
	estateTokens      = compileIndicators([]string{"château", "chateau", "domaine", "estate", "winery", "bodega", "weingut", "cantina", "tenuta"})
	appellationTokens = compileIndicators([]string{"appellation"})
	regulatoryTokens  = compileIndicators([]string{"contrôlée", "controlee", "aoc", "aop", "doc", "docg", "igt", "ava", "grand cru classé", "classé"})

	totalTokens    = compileIndicators([]string{"total", "합계", "총액"})
	subtotalTokens = compileIndicators([]string{"subtotal", "소계"})
	paymentTokens  = compileIndicators([]string{"cash", "card", "credit", "debit", "payment", "카드", "현금", "결제"})
	storeTokens    = compileIndicators([]string{"store", "market", "mart", "shop", "supermarket", "liquor", "마트", "매장"})

	currencySymbols = compileIndicators([]string{"$", "€", "£", "₩", "¥"})
)

// Pattern triggers. Input is lowercased before matching.
var (
	reYear    = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	reAlcohol = regexp.MustCompile(`\d{1,2}(?:\.\d+)?\s*%\s*(?:vol|alc)|alc(?:ohol)?\.?\s*:?\s*\d{1,2}(?:\.\d+)?\s*%|\b\d{1,2}(?:\.\d+)?\s*도`)
	reVolume  = regexp.MustCompile(`\b\d{2,4}\s*(?:ml|cl|l)\b`)
	reDate    = regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`)
	reTime    = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\b`)
	rePrice   = regexp.MustCompile(`[$€£₩¥]\s*\d[\d,]*(?:\.\d{1,2})?|\d[\d,]*(?:\.\d{1,2})?\s*원`)
)

func anyMatch(text string, inds []indicator) bool {
	for _, in := range inds {
		if in.matches(text) {
			return true
		}
	}
	return false
}

func matchedTokens(text string, inds []indicator) []string {
	var out []string
	for _, in := range inds {
		if in.matches(text) {
			out = append(out, in.token)
		}
	}
	return out
}
