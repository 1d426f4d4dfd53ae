// Package feed 把聚合后的 Notice 渲染为 RSS 2.0 文档。
package feed

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/NoticeHub/internal/collector"
)

// PubDateLayout RSS 条目日期格式，带数字时区偏移
const PubDateLayout = time.RFC1123Z

const (
	rssVersion  = "2.0"
	atomNS      = "http://www.w3.org/2005/Atom"
	rssMimeType = "application/rss+xml"
)

var (
	ErrInvalidMetadata = errors.New("feed: invalid metadata")
	ErrMissingDate     = errors.New("feed: item has no date")
)

// Metadata 频道信息，Link 为站点地址，SelfLink 为 feed 自身地址
type Metadata struct {
	Title       string
	Description string
	Link        string
	SelfLink    string
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Link        string    `xml:"link"`
	AtomLink    atomLink  `xml:"atom:link"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Description cdata   `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
}

// 描述允许内嵌 HTML（如漫画图片），整体放进 CDATA
type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Render 按给定顺序输出条目，不会重新排序
func Render(items []collector.Notice, meta Metadata) ([]byte, error) {
	if meta.Title == "" || meta.Link == "" {
		return nil, fmt.Errorf("%w: title and link are required", ErrInvalidMetadata)
	}

	doc := rssDocument{
		Version: rssVersion,
		AtomNS:  atomNS,
		Channel: rssChannel{
			Title:       xmlSafe(meta.Title),
			Description: xmlSafe(meta.Description),
			Link:        xmlSafe(meta.Link),
			AtomLink: atomLink{
				Href: xmlSafe(meta.SelfLink),
				Rel:  "self",
				Type: rssMimeType,
			},
			Items: make([]rssItem, 0, len(items)),
		},
	}

	for i, it := range items {
		if !it.Dated() {
			return nil, fmt.Errorf("%w: item %d (%s)", ErrMissingDate, i, it.Link)
		}
		pubDate := it.PublishedAt.Format(PubDateLayout)
		title, desc, link := xmlSafe(it.Title), xmlSafe(it.Description), xmlSafe(it.Link)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       title,
			Description: cdata{Text: desc},
			PubDate:     pubDate,
			Link:        link,
			GUID: rssGUID{
				IsPermaLink: false,
				Value:       GUID(title, desc, pubDate, link),
			},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("feed: encode rss: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("feed: encode rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// GUID 由标题、描述、格式化后的日期和链接拼接后取 SHA1
func GUID(title, description, pubDate, link string) string {
	h := sha1.New()
	h.Write([]byte(title))
	h.Write([]byte(description))
	h.Write([]byte(pubDate))
	h.Write([]byte(link))
	return hex.EncodeToString(h.Sum(nil))
}

// xmlSafe 把 XML 1.0 不允许的字符（控制字符、U+FFFE/U+FFFF、非法字节）替换为 U+FFFD。
// CDATA 内容不会被 encoding/xml 转义，必须在这里处理。
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return '\uFFFD'
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
