package parser

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Spreadsheet serials count days since 1899-12-30 (the 1900 datemode
// epoch shifted by the historical Lotus leap-year bug).
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	// minDateSerial is 1970-01-01; serials below this are far more
	// likely to be ordinary measurements than dates.
	minDateSerial = 25569
	// maxDateSerial is 2100-01-01.
	maxDateSerial = 73051
)

// dateHeaderKeywords match column headers that announce date/time
// content, across the locales the tool supports.
var dateHeaderKeywords = []string{
	// English
	"date", "time", "day", "created", "updated", "published", "modified",
	"timestamp", "deadline", "due", "birthday", "expires", "expiry",
	// Chinese
	"日期", "时间", "日時", "创建", "創建", "更新", "发布", "發布", "截止",
	// Japanese
	"日付", "時刻", "作成", "公開",
	// Spanish
	"fecha", "hora", "creado", "actualizado", "publicado",
}

var dateFormatToken = regexp.MustCompile(`(?i)yy|mm|dd`)

// IsDateSerial decides whether a numeric cell value is a date serial.
// Conversion is deliberately conservative: the value must sit in the
// plausible serial range, and either the cell's stored number format
// must carry date tokens or the column header must carry a date
// keyword. A stored date format is definitive; header evidence alone
// is overruled for count-like values, since blind range conversion
// corrupts view counts and IDs that land in the date range.
func IsDateSerial(value float64, header, numberFormat string) bool {
	if value < minDateSerial || value >= maxDateSerial {
		return false
	}
	if formatSuggestsDate(numberFormat) {
		return true
	}
	return headerSuggestsDate(header) && !isCountLike(value)
}

// isCountLike flags integers that read as rounded counts or prices
// rather than dates. A genuine date serial is an arbitrary day number;
// an exact multiple of 1000 in the date range (30000, 45000, ...) is
// overwhelmingly a metric. Fractional values always pass: a time-of-day
// fraction is itself date evidence.
func isCountLike(value float64) bool {
	if value != math.Trunc(value) {
		return false
	}
	return math.Mod(value, 1000) == 0
}

func headerSuggestsDate(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, kw := range dateHeaderKeywords {
		if strings.Contains(h, kw) {
			return true
		}
	}
	return false
}

func formatSuggestsDate(numberFormat string) bool {
	if numberFormat == "" {
		return false
	}
	// "General", "0.00" and friends carry no date tokens.
	return dateFormatToken.MatchString(numberFormat)
}

// FormatDateSerial renders a date serial as a display string. Integer
// serials render as a date; serials with a time fraction render date
// and time.
func FormatDateSerial(value float64) string {
	days := math.Trunc(value)
	frac := value - days
	t := serialEpoch.AddDate(0, 0, int(days))
	if frac == 0 {
		return t.Format("2006-01-02")
	}
	seconds := math.Round(frac * 86400)
	t = t.Add(time.Duration(seconds) * time.Second)
	return t.Format("2006-01-02 15:04")
}

// ConvertDateSerial applies IsDateSerial and, on a hit, returns the
// display string and true.
func ConvertDateSerial(value float64, header, numberFormat string) (string, bool) {
	if !IsDateSerial(value, header, numberFormat) {
		return "", false
	}
	return FormatDateSerial(value), true
}
