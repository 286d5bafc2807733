package hebrew

import "strings"

// categoryKeywords maps canonical meat categories to the Hebrew (and
// transliterated) keywords that identify them in product names. Order
// matters: earlier categories win when keywords overlap.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"beef", []string{"בקר", "אנטריקוט", "סינטה", "פילה בקר", "אסאדו", "צלעות בקר", "entrecote", "beef"}},
	{"chicken", []string{"עוף", "פרגית", "חזה עוף", "כנפיים", "שוקיים", "chicken"}},
	{"turkey", []string{"הודו", "חזה הודו", "turkey"}},
	{"lamb", []string{"טלה", "כבש", "צלעות טלה", "lamb"}},
	{"fish", []string{"דג", "סלמון", "דניס", "לברק", "טונה", "salmon", "fish"}},
	{"veal", []string{"עגל", "veal"}},
	{"organ", []string{"כבד", "לבבות", "טחול", "מוח"}},
	{"processed", []string{"נקניק", "קבב", "המבורגר", "שניצל", "מעובד", "נקניקיות", "kebab", "burger", "schnitzel"}},
}

// DetectCategory returns the canonical meat category of a product name,
// or "" when no keyword matches.
func DetectCategory(name string) string {
	n := Normalize(name)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(n, Normalize(kw)) {
				return c.category
			}
		}
	}
	return ""
}

// meatIndicators flag meat products whose name carries no category
// keyword, e.g. "בשר טחון" with no species named. Names matched only
// here pass the bulk gate with an empty category.
var meatIndicators = []string{
	"בשר", "טחון", "סטייק", "שווארמה", "פסטרמה", "צלי",
	"meat", "steak", "shawarma", "pastrami",
}

// IsMeatProduct reports whether a product name belongs to any tracked
// meat category. Bulk ingestion uses this as the match-candidate gate.
func IsMeatProduct(name string) bool {
	if DetectCategory(name) != "" {
		return true
	}
	n := Normalize(name)
	for _, kw := range meatIndicators {
		if strings.Contains(n, Normalize(kw)) {
			return true
		}
	}
	return false
}
