package extract

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// storeTypeKeywords identify a store name when the first line is unusable.
var storeTypeKeywords = []string{
	"store", "market", "mart", "shop", "supermarket", "liquor", "wine",
	"cellar", "마트", "매장", "백화점", "상회",
}

// ReceiptExtractor parses receipt OCR text into store, date, time, line
// items, totals, and payment method. It is stateless and safe for
// concurrent use.
type ReceiptExtractor struct {
	logger *slog.Logger
}

func NewReceiptExtractor(logger *slog.Logger) *ReceiptExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptExtractor{logger: logger}
}

// Extract applies the receipt rules. With no receipt keyword and no valid
// date anywhere in the text, extraction is skipped and only an empty item
// list is returned.
func (e *ReceiptExtractor) Extract(text string) ReceiptFields {
	f := ReceiptFields{Items: []ReceiptItem{}}
	if strings.TrimSpace(text) == "" {
		return f
	}
	lower := strings.ToLower(text)
	if !containsAny(lower, receiptKeywords) && !reDateYMD.MatchString(text) && !reDateMDY.MatchString(text) {
		return f
	}

	lines := meaningfulLines(text)

	f.Store = extractStore(lines)
	f.Date = extractDate(text)
	f.Time = extractTime(text)
	f.Items = e.extractItems(lines, f.Store)
	f.Subtotal = extractLabeledAmount(text, reSubtotal)
	f.Tax = extractLabeledAmount(text, reTax)
	f.Total = extractLabeledAmount(text, reTotal)
	f.PaymentMethod = extractPaymentMethod(text)

	e.logger.Debug("extract.receipt.done",
		"items", len(f.Items),
		"has_store", f.Store != nil,
		"has_total", f.Total != nil,
	)
	return f
}

// extractStore prefers the first line unless it looks like a date or a
// price; otherwise any line carrying a store-type keyword wins.
func extractStore(lines []string) *string {
	if len(lines) == 0 {
		return nil
	}
	first := lines[0]
	if utf8.RuneCountInString(first) > 2 && !isDateLine(first) && !startsWithPrice(first) {
		return strPtr(first)
	}
	for _, line := range lines {
		if containsAny(strings.ToLower(line), storeTypeKeywords) {
			return strPtr(line)
		}
	}
	return nil
}

func isDateLine(line string) bool {
	return reDateYMD.MatchString(line) || reDateMDY.MatchString(line)
}

func startsWithPrice(line string) bool {
	if line == "" {
		return false
	}
	if startsWithDigit(line) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(line)
	switch r {
	case '₩', '$', '€', '£', '¥':
		return true
	}
	return false
}

// extractDate accepts Y-M-D with a 4-digit leading year, or M/D/Y
// otherwise, normalized to zero-padded YYYY-MM-DD.
func extractDate(text string) *string {
	if m := reDateYMD.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if validDate(y, mo, d) {
			return strPtr(fmt.Sprintf("%04d-%02d-%02d", y, mo, d))
		}
	}
	if m := reDateMDY.FindStringSubmatch(text); m != nil {
		mo, _ := strconv.Atoi(m[1])
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if validDate(y, mo, d) {
			return strPtr(fmt.Sprintf("%04d-%02d-%02d", y, mo, d))
		}
	}
	return nil
}

func validDate(y, m, d int) bool {
	return y >= 1900 && y <= 2099 && m >= 1 && m <= 12 && d >= 1 && d <= 31
}

// extractTime normalizes to 24-hour HH:MM, keeping seconds when present.
func extractTime(text string) *string {
	if m := reTime12.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 12 {
			return nil
		}
		h = h % 12
		if strings.EqualFold(m[4], "pm") {
			h += 12
		}
		out := fmt.Sprintf("%02d:%s", h, m[2])
		if m[3] != "" {
			out += ":" + m[3]
		}
		return strPtr(out)
	}
	if m := reTime24.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 23 {
			return nil
		}
		out := fmt.Sprintf("%02d:%s", h, m[2])
		if m[3] != "" {
			out += ":" + m[3]
		}
		return strPtr(out)
	}
	return nil
}

// extractItems walks the non-excluded lines, pulling a trailing price and
// treating the remainder as the item name. A quantity marker on the same
// line or the immediately following line overrides the default of 1; a
// consumed quantity line is not reprocessed as its own item.
func (e *ReceiptExtractor) extractItems(lines []string, store *string) []ReceiptItem {
	items := []ReceiptItem{}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if excludedItemLine(line, store) {
			continue
		}

		price, rest, ok := trailingPrice(line)
		if !ok {
			continue
		}
		qty, rest2 := sameLineQuantity(rest)
		name := strings.TrimSpace(rest2)
		if utf8.RuneCountInString(name) < 2 {
			continue
		}

		if qty == 0 {
			qty = 1
			if i+1 < len(lines) {
				if q, isQtyLine := quantityOnlyLine(lines[i+1]); isQtyLine {
					qty = q
					i++ // consume the quantity line
				}
			}
		}

		item := ReceiptItem{Name: name, Price: price, Quantity: qty}
		if m := reWineYear.FindString(name); m != "" {
			v, _ := strconv.Atoi(m)
			item.Vintage = intPtr(v)
		}
		items = append(items, item)
	}
	return items
}

func excludedItemLine(line string, store *string) bool {
	if reSeparator.MatchString(line) {
		return true
	}
	if store != nil && line == *store {
		return true
	}
	if reExcluded.MatchString(line) {
		return true
	}
	if reTotalLabel.MatchString(line) || rePaymentLabel.MatchString(line) {
		return true
	}
	if isMetaLine(line) {
		return true
	}
	return false
}

// isMetaLine reports lines that carry only date/time information, such as
// a timestamp row.
func isMetaLine(line string) bool {
	s := reDateYMD.ReplaceAllString(line, "")
	s = reDateMDY.ReplaceAllString(s, "")
	s = reTime24.ReplaceAllString(s, "")
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// trailingPrice tries the currency patterns in order and returns the
// parsed price plus the line with the matched substring stripped.
func trailingPrice(line string) (float64, string, bool) {
	for _, re := range reItemPrices {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		raw := line[loc[2]:loc[3]]
		price, err := parseAmount(raw)
		if err != nil {
			continue
		}
		return price, strings.TrimSpace(line[:loc[0]]), true
	}
	return 0, line, false
}

// sameLineQuantity strips an inline quantity marker and returns it, or 0
// when the line carries none.
func sameLineQuantity(line string) (int, string) {
	if m := reQuantity.FindStringSubmatchIndex(line); m != nil {
		q, _ := strconv.Atoi(line[m[2]:m[3]])
		if q >= 1 {
			return q, line[:m[0]] + line[m[1]:]
		}
	}
	if m := reQuantityKo.FindStringSubmatchIndex(line); m != nil {
		q, _ := strconv.Atoi(line[m[2]:m[3]])
		if q >= 1 {
			return q, line[:m[0]] + line[m[1]:]
		}
	}
	return 0, line
}

// quantityOnlyLine reports whether a line is nothing but a quantity
// marker, e.g. "수량: 2" or "qty: 3".
func quantityOnlyLine(line string) (int, bool) {
	if _, _, hasPrice := trailingPrice(line); hasPrice {
		// A line with its own price is its own item.
		if !reQuantity.MatchString(line) && !reQuantityKo.MatchString(line) {
			return 0, false
		}
	}
	if m := reQuantity.FindStringSubmatch(line); m != nil {
		rest := reQuantity.ReplaceAllString(line, "")
		if !hasWordChar(rest) {
			q, _ := strconv.Atoi(m[1])
			if q >= 1 {
				return q, true
			}
		}
	}
	if m := reQuantityKo.FindStringSubmatch(line); m != nil {
		rest := reQuantityKo.ReplaceAllString(line, "")
		if !hasWordChar(rest) {
			q, _ := strconv.Atoi(m[1])
			if q >= 1 {
				return q, true
			}
		}
	}
	return 0, false
}

func hasWordChar(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func extractLabeledAmount(text string, re interface {
	FindStringSubmatch(string) []string
}) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := parseAmount(m[1])
	if err != nil {
		return nil
	}
	return floatPtr(v)
}

func extractPaymentMethod(text string) *string {
	for _, pm := range paymentMethods {
		if pm.re.MatchString(text) {
			return strPtr(pm.label)
		}
	}
	return nil
}

// parseAmount strips thousands separators before parsing. A single comma
// followed by exactly two digits is treated as a decimal comma.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		if idx := strings.LastIndex(s, ","); idx >= 0 && len(s)-idx == 3 && strings.Count(s, ",") == 1 {
			s = s[:idx] + "." + s[idx+1:]
		}
	}
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
