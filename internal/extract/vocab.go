package extract

import "regexp"

// Wine vintages on labels sit in a narrower window than generic years.
const (
	minVintage = 1950
	maxVintage = 2039
)

// reWineYear matches years in [1950, 2039]; reBareYear matches a line
// that is nothing but such a year.
var (
	reWineYear = regexp.MustCompile(`\b(19[5-9]\d|20[0-3]\d)\b`)
	reBareYear = regexp.MustCompile(`^(19[5-9]\d|20[0-3]\d)$`)
)

// labelKeywords gate label extraction: with none of these and no valid
// year, the text is assumed unrelated and extraction is skipped.
var labelKeywords = []string{
	"château", "chateau", "domaine", "clos", "castello", "bodega", "weingut",
	"estate", "winery", "vineyard", "appellation", "cru", "vintage",
	"wine", "vin", "vino", "와인",
}

// regionGazetteer lists well-known wine regions. Matching is
// case-insensitive; the original casing from the text is preserved.
var regionGazetteer = []string{
	"Bordeaux", "Burgundy", "Bourgogne", "Champagne", "Loire", "Alsace",
	"Rhône", "Rhone", "Provence", "Languedoc", "Beaujolais",
	"Napa Valley", "Sonoma", "Willamette Valley", "Finger Lakes",
	"Rioja", "Ribera del Duero", "Priorat",
	"Tuscany", "Toscana", "Piedmont", "Piemonte", "Veneto", "Sicilia",
	"Mosel", "Rheingau", "Pfalz",
	"Mendoza", "Maipo", "Barossa Valley", "Margaret River",
	"Marlborough", "Central Otago", "Stellenbosch", "Douro",
}

// varietyAliases maps lowercase variety spellings (including Korean
// aliases) to the canonical English grape name. Longer aliases are listed
// before their prefixes so "cabernet sauvignon" wins over "cabernet".
var varietyAliases = []struct {
	alias     string
	canonical string
}{
	{"cabernet sauvignon", "Cabernet Sauvignon"},
	{"까베르네 소비뇽", "Cabernet Sauvignon"},
	{"카베르네 소비뇽", "Cabernet Sauvignon"},
	{"cabernet franc", "Cabernet Franc"},
	{"sauvignon blanc", "Sauvignon Blanc"},
	{"소비뇽 블랑", "Sauvignon Blanc"},
	{"pinot noir", "Pinot Noir"},
	{"피노 누아", "Pinot Noir"},
	{"pinot grigio", "Pinot Grigio"},
	{"pinot gris", "Pinot Gris"},
	{"merlot", "Merlot"},
	{"메를로", "Merlot"},
	{"chardonnay", "Chardonnay"},
	{"샤르도네", "Chardonnay"},
	{"syrah", "Syrah"},
	{"shiraz", "Syrah"},
	{"시라", "Syrah"},
	{"riesling", "Riesling"},
	{"리슬링", "Riesling"},
	{"malbec", "Malbec"},
	{"말벡", "Malbec"},
	{"tempranillo", "Tempranillo"},
	{"grenache", "Grenache"},
	{"garnacha", "Grenache"},
	{"sangiovese", "Sangiovese"},
	{"nebbiolo", "Nebbiolo"},
	{"zinfandel", "Zinfandel"},
	{"gewürztraminer", "Gewürztraminer"},
	{"gamay", "Gamay"},
	{"viognier", "Viognier"},
	{"chenin blanc", "Chenin Blanc"},
	{"moscato", "Moscato"},
	{"무스카토", "Moscato"},
}

// classificationVocab lists quality designations, longest first so the
// most specific designation wins.
var classificationVocab = []string{
	"Premier Grand Cru Classé",
	"Premier Grand Cru Classe",
	"Grand Cru Classé",
	"Grand Cru Classe",
	"Premier Cru",
	"Grand Cru",
	"Gran Reserva",
	"Vieilles Vignes",
	"Single Vineyard",
	"Reserva",
	"Riserva",
	"Reserve",
	"DOCG",
	"AOC",
	"AOP",
	"DOC",
	"IGT",
	"VDP",
}

// Gazetteer lookups match case-insensitively against the original text so
// the returned slice keeps the text's own casing.
var (
	regionPatterns         = compileVocab(regionGazetteer)
	classificationPatterns = compileVocab(classificationVocab)
)

func compileVocab(vocab []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(vocab))
	for i, entry := range vocab {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(entry))
	}
	return out
}

// estateKeywords identify producer-ish lines and prestige name patterns.
var estateKeywords = []string{
	"château", "chateau", "domaine", "clos", "castello", "bodega",
	"bodegas", "weingut", "tenuta", "quinta", "winery", "estate", "cellars",
}

// Label field patterns.
var (
	rePrestigeName = regexp.MustCompile(`(?i)\b(ch[âa]teau|domaine|clos|castello|bodegas?|weingut|tenuta|quinta)\b[ \t]+[^\n]+`)
	reYearSuffixKo = regexp.MustCompile(`(19[5-9]\d|20[0-3]\d)\s*년산`)
	reVintageWord  = regexp.MustCompile(`(?i)\b(?:vintage|harvest)\s*[:.]?\s*(19[5-9]\d|20[0-3]\d)\b`)

	reAppellation = regexp.MustCompile(`(?i)appellation\s+(.+?)\s+(?:contr[ôo]l[ée]e|prot[ée]g[ée]e)`)

	reAlcoholVol    = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)\s*%\s*vol`)
	reAlcoholWord   = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)\s*%\s*alc(?:ohol)?`)
	reAlcoholPrefix = regexp.MustCompile(`(?i)alc(?:ohol)?\.?\s*:?\s*(\d{1,2}(?:\.\d+)?)\s*%`)
	reAlcoholKo     = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*도`)

	reVolume = regexp.MustCompile(`(?i)\b(\d{2,4})\s*(ml|cl|l)\b`)
)

// Receipt patterns.
var (
	reDateYMD = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	reDateMDY = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	reTime12 = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(am|pm)\b`)
	reTime24 = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)

	// Trailing price patterns, tried in order. The matched substring is
	// stripped from the line to leave the item name.
	reItemPrices = []*regexp.Regexp{
		regexp.MustCompile(`₩\s*([\d,]+)\s*$`),
		regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)\s*$`),
		regexp.MustCompile(`€\s*([\d,]+(?:[.,]\d{1,2})?)\s*$`),
		regexp.MustCompile(`([\d,]+)\s*원\s*$`),
		regexp.MustCompile(`([\d,]+(?:\.\d{1,2})?)\s*$`),
	}

	reQuantity   = regexp.MustCompile(`(?i)(?:수량|qty|quantity)\s*[:：]?\s*(\d+)`)
	reQuantityKo = regexp.MustCompile(`(\d+)\s*개`)

	amount       = `[₩$€£]?\s*([\d,]+(?:\.\d{1,2})?)`
	reSubtotal   = regexp.MustCompile(`(?i)(?:subtotal|sub\s+total|소계)\s*[:：]?\s*` + amount)
	reTax        = regexp.MustCompile(`(?i)(?:tax|vat|부가세|세금)\s*[:：]?\s*` + amount)
	reTotal      = regexp.MustCompile(`(?i)(?:^|\s)(?:total|합계|총액)\s*[:：]?\s*` + amount)
	// \b only guards the ASCII alternatives; it never matches after Hangul.
	reTotalLabel = regexp.MustCompile(`(?i)(?:^|\s)(?:(?:sub\s*total|subtotal|total|tax|vat|change)\b|합계|총액|소계|부가세|세금|거스름돈)`)

	rePaymentLabel = regexp.MustCompile(`(?i)^\s*(?:payment\b|결제|지불)`)

	reSeparator = regexp.MustCompile(`^[-=*_.\s]+$`)
	reExcluded  = regexp.MustCompile(`(?i)(?:tel|phone|fax|전화|주소|address|thank\s*you|감사합니다|approval|승인번호|card\s*no|카드번호|사업자|영수증|receipt\s*(?:no|#)|www\.|@)`)
)

// receiptKeywords gate receipt extraction, mirroring the label guard.
var receiptKeywords = []string{
	"total", "subtotal", "tax", "vat", "receipt", "invoice", "cash",
	"card", "credit", "payment", "change",
	"합계", "총액", "소계", "부가세", "카드", "현금", "영수증", "결제",
}

// paymentMethods maps detection patterns to canonical labels, most
// specific first.
var paymentMethods = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)credit\s*card|신용\s*카드`), "Credit Card"},
	{regexp.MustCompile(`(?i)debit\s*card|체크\s*카드`), "Debit Card"},
	{regexp.MustCompile(`(?i)\bcard\b|카드`), "Card"},
	{regexp.MustCompile(`(?i)\bcash\b|현금`), "Cash"},
}
