package collector

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	fourDigitDateLayout = "2-1-2006"
	twoDigitDateLayout  = "2-1-06"
	titleDateLayout     = "Mon, 02 Jan 2006"
)

var (
	twoDigitYearPattern = regexp.MustCompile(`\d\d-\d\d-\d\d$`)

	errMissingCell   = errors.New("cell missing")
	errMissingAnchor = errors.New("no anchor in row")
	errEmptyHref     = errors.New("anchor has empty href")
	errNoDate        = errors.New("date unavailable")
)

// Extract 把一行表格转换为 Notice。每个字段独立提取，任一字段失败只记录日志并使用兜底值，
// 不会影响其它字段，也不会向调用方返回错误。
func Extract(row Row, layout Layout, logger *slog.Logger) Notice {
	if logger == nil {
		logger = slog.Default()
	}

	n := Notice{
		RawData: map[string]any{
			"layout": layout.Kind.String(),
		},
	}

	date, err := extractDate(row, layout)
	if err != nil {
		logger.Warn("could not extract date", "field", "date", "err", err)
	} else {
		n.PublishedAt = date
	}

	title, err := extractTitle(n.PublishedAt)
	if err != nil {
		logger.Warn("could not extract title", "field", "title", "err", err)
		title = layout.TitlePlaceholder
	}
	n.Title = title

	desc, err := extractDescription(row, layout)
	if err != nil {
		logger.Warn("could not extract description", "field", "description", "err", err)
		desc = layout.DescriptionPlaceholder
	}
	n.Description = desc

	link, err := extractLink(row, layout)
	if err != nil {
		logger.Warn("could not extract link", "field", "link", "err", err)
	} else {
		n.Link = link
	}

	if highlight(&n, layout) {
		n.RawData["highlighted"] = true
	}

	return n
}

func extractDate(row Row, layout Layout) (time.Time, error) {
	raw, err := row.Cell(layout.DateColumn)
	if err != nil {
		return time.Time{}, err
	}
	raw = cleanText(raw)

	format := fourDigitDateLayout
	if layout.DateStyle == DateTwoOrFourDigit && twoDigitYearPattern.MatchString(raw) {
		format = twoDigitDateLayout
	}

	t, err := time.Parse(format, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	return t, nil
}

func extractTitle(date time.Time) (string, error) {
	if date.IsZero() {
		return "", errNoDate
	}
	return date.Format(titleDateLayout), nil
}

func extractDescription(row Row, layout Layout) (string, error) {
	raw, err := row.Cell(layout.DescriptionColumn)
	if err != nil {
		return "", err
	}
	return toValidUTF8(cleanText(raw)), nil
}

func extractLink(row Row, layout Layout) (string, error) {
	if !row.HasAnchor {
		return "", errMissingAnchor
	}
	href := strings.TrimSpace(row.Href)
	if href == "" {
		return "", errEmptyHref
	}
	return resolveLink(href, layout), nil
}

func resolveLink(href string, layout Layout) string {
	if strings.HasPrefix(href, "//") {
		return "http:" + href
	}

	switch layout.LinkRule {
	case LinkPrefixRelative:
		if u, err := url.Parse(href); err == nil && u.IsAbs() {
			return href
		}
		return strings.TrimSuffix(layout.Origin, "/") + "/" + strings.TrimPrefix(href, "/")
	default:
		if strings.HasPrefix(href, "/") {
			return strings.TrimSuffix(layout.Origin, "/") + href
		}
		return href
	}
}

// highlight 描述命中任意关键字时给标题加上标记，只加一次
func highlight(n *Notice, layout Layout) bool {
	if layout.Marker == "" {
		return false
	}
	for _, re := range layout.Keywords {
		if re.MatchString(n.Description) {
			n.Title = layout.Marker + n.Title
			return true
		}
	}
	return false
}

// cleanText 合并单元格内的换行、制表符和 &nbsp;
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// toValidUTF8 将字符串规范为合法 UTF-8，非法字节替换为 U+FFFD
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
