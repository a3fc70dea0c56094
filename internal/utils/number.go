package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxKeepNums = regexp.MustCompile(`[^\d.\-]`)
	spaces     = strings.NewReplacer(" ", "", "\u00A0", "", "\u202F", "", "\u2009", "", "\t", "")
)

// ParseNumber разбирает цены и количества из выгрузок: "1 234,50", "1,234.50", "(12.5)", "₹ 1,200.00".
// Последний из разделителей '.'/',' считается десятичным, остальные - разделителями тысяч.
// Одиночная запятая без точки - десятичная ("12,5").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = spaces.Replace(s)

	if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		last := strings.LastIndex(s, ",")
		s = strings.ReplaceAll(s[:last], ",", "") + "." + s[last+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	s = rxKeepNums.ReplaceAllString(s, "")
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
