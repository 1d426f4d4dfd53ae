package collector

import "regexp"

// LayoutKind 区分两类公告页：普通公告页与成绩公告页
type LayoutKind int

const (
	LayoutStandard LayoutKind = iota
	LayoutResults
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutStandard:
		return "standard"
	case LayoutResults:
		return "results"
	default:
		return "unknown"
	}
}

// DateStyle 日期单元格的解析方式
type DateStyle int

const (
	// DateFourDigit 仅接受 d-m-YYYY
	DateFourDigit DateStyle = iota
	// DateTwoOrFourDigit 末尾形如 NN-NN-NN 时按两位年份解析，否则按四位年份
	DateTwoOrFourDigit
)

// LinkRule 相对链接的补全方式
type LinkRule int

const (
	// LinkRootRelative 只有以 "/" 开头的链接才补全站点前缀
	LinkRootRelative LinkRule = iota
	// LinkPrefixRelative 所有非绝对链接都拼接固定前缀
	LinkPrefixRelative
)

const (
	ipuOrigin     = "http://ipu.ac.in"
	resultsOrigin = "http://164.100.158.135/"

	descriptionPlaceholder = "Could not extract description."
	titlePlaceholder       = "Couldn't extract title."
	highlightMarker        = "-> "
)

// 描述中命中即高亮的关键字（忽略大小写）
var defaultKeywords = []*regexp.Regexp{
	regexp.MustCompile(`(?i)mca`),
	regexp.MustCompile(`(?i)usict`),
}

// Layout 描述一行表格如何映射到 Notice 各字段。每类页面一份，创建后不再修改。
type Layout struct {
	Kind              LayoutKind
	DescriptionColumn int
	DateColumn        int
	DateStyle         DateStyle
	LinkRule          LinkRule
	Origin            string

	Keywords []*regexp.Regexp
	Marker   string

	DescriptionPlaceholder string
	TitlePlaceholder       string
}

// StandardLayout 普通公告页：第一列为描述，第二列为 d-m-YYYY 日期
func StandardLayout() Layout {
	return Layout{
		Kind:                   LayoutStandard,
		DescriptionColumn:      0,
		DateColumn:             1,
		DateStyle:              DateFourDigit,
		LinkRule:               LinkRootRelative,
		Origin:                 ipuOrigin,
		Keywords:               defaultKeywords,
		Marker:                 highlightMarker,
		DescriptionPlaceholder: descriptionPlaceholder,
		TitlePlaceholder:       titlePlaceholder,
	}
}

// ResultsLayout 成绩公告页：日期可能是两位年份，链接一律挂在成绩服务器下
func ResultsLayout() Layout {
	l := StandardLayout()
	l.Kind = LayoutResults
	l.DateStyle = DateTwoOrFourDigit
	l.LinkRule = LinkPrefixRelative
	l.Origin = resultsOrigin
	return l
}
