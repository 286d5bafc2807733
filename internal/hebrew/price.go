package hebrew

import (
	"regexp"
	"strconv"
	"strings"
)

// priceToken matches the first decimal number in a price string, after
// currency markers are removed. Israeli price feeds use both "89.90" and
// "89,90" and occasionally thousands separators ("1,299.00").
var priceToken = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// currencyMarkers are stripped before number extraction.
var currencyMarkers = []string{"₪", "ש\"ח", "שח", "nis", "NIS", "ils", "ILS"}

// ExtractPrice parses a raw price string into shekels. The boolean is
// false when no usable number is present or the value is negative.
func ExtractPrice(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	for _, m := range currencyMarkers {
		s = strings.ReplaceAll(s, m, "")
	}

	token := priceToken.FindString(s)
	if token == "" {
		return 0, false
	}

	// "1,299.00" → "1299.00"; "89,90" → "89.90".
	if strings.Contains(token, ".") {
		token = strings.ReplaceAll(token, ",", "")
	} else if i := strings.LastIndex(token, ","); i >= 0 && len(token)-i-1 <= 2 {
		token = strings.ReplaceAll(token[:i], ",", "") + "." + token[i+1:]
	} else {
		token = strings.ReplaceAll(token, ",", "")
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
