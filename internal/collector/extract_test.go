package collector

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractStandardRow(t *testing.T) {
	row := Row{
		Cells:     []string{"  Revised schedule\n\tfor B.Tech exams ", "02-01-2024"},
		Href:      "/upload/notice.pdf",
		HasAnchor: true,
	}

	n := Extract(row, StandardLayout(), quietLogger())

	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !n.PublishedAt.Equal(want) {
		t.Fatalf("date = %v, want %v", n.PublishedAt, want)
	}
	if n.Title != "Tue, 02 Jan 2024" {
		t.Fatalf("title = %q", n.Title)
	}
	if n.Description != "Revised schedule for B.Tech exams" {
		t.Fatalf("description = %q", n.Description)
	}
	if n.Link != "http://ipu.ac.in/upload/notice.pdf" {
		t.Fatalf("link = %q", n.Link)
	}
	if _, ok := n.RawData["highlighted"]; ok {
		t.Fatalf("plain notice should not be highlighted")
	}
}

func TestExtractInvalidDate(t *testing.T) {
	for _, raw := range []string{"31-02-2024", "5-1-24", "soon", ""} {
		n := Extract(Row{Cells: []string{"Notice", raw}}, StandardLayout(), quietLogger())
		if n.Dated() {
			t.Fatalf("%q: expected undated notice, got %v", raw, n.PublishedAt)
		}
		if n.Title != "Couldn't extract title." {
			t.Fatalf("%q: title = %q", raw, n.Title)
		}
		if n.Description != "Notice" {
			t.Fatalf("%q: description = %q", raw, n.Description)
		}
	}
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestExtractLogsFieldDiagnostics(t *testing.T) {
	logger, buf := bufferLogger()
	Extract(Row{Cells: []string{"Notice", "31-02-2024"}}, StandardLayout(), logger)

	out := buf.String()
	for _, want := range []string{`msg="could not extract date"`, "field=date", `31-02-2024`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}

	// 空行：四个字段都走兜底，各自记录一条
	logger, buf = bufferLogger()
	Extract(Row{}, StandardLayout(), logger)
	out = buf.String()
	for _, field := range []string{"date", "title", "description", "link"} {
		if !strings.Contains(out, `msg="could not extract `+field+`"`) || !strings.Contains(out, "field="+field) {
			t.Fatalf("missing diagnostic for %s:\n%s", field, out)
		}
	}
	if n := strings.Count(out, "level=WARN"); n != 4 {
		t.Fatalf("expected 4 warnings, got %d:\n%s", n, out)
	}

	logger, buf = bufferLogger()
	Extract(Row{Cells: []string{"Notice", "02-01-2024"}, Href: "/a.pdf", HasAnchor: true}, StandardLayout(), logger)
	if buf.Len() != 0 {
		t.Fatalf("clean row should not log:\n%s", buf.String())
	}
}

func TestExtractHighlightsKeywords(t *testing.T) {
	cases := map[string]bool{
		"MCA admissions open":           true,
		"Seminar at usict block":        true,
		"Result of mCa and USICT exams": true,
		"B.Tech counselling":            false,
	}
	for desc, hit := range cases {
		n := Extract(Row{Cells: []string{desc, "02-01-2024"}}, StandardLayout(), quietLogger())
		want := "Tue, 02 Jan 2024"
		if hit {
			want = "-> " + want
		}
		if n.Title != want {
			t.Fatalf("%q: title = %q, want %q", desc, n.Title, want)
		}
		if got, _ := n.RawData["highlighted"].(bool); got != hit {
			t.Fatalf("%q: highlighted = %v, want %v", desc, got, hit)
		}
	}
}

func TestExtractHighlightsUndatedTitle(t *testing.T) {
	n := Extract(Row{Cells: []string{"MCA notice", "tbd"}}, StandardLayout(), quietLogger())
	if n.Title != "-> Couldn't extract title." {
		t.Fatalf("title = %q", n.Title)
	}
}

func TestExtractResultsDates(t *testing.T) {
	cases := map[string]time.Time{
		"05-01-24":   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"05-01-2024": time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"5-1-2024":   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		n := Extract(Row{Cells: []string{"Result", raw}}, ResultsLayout(), quietLogger())
		if !n.PublishedAt.Equal(want) {
			t.Fatalf("%q: date = %v, want %v", raw, n.PublishedAt, want)
		}
	}

	n := Extract(Row{Cells: []string{"Result", "05-01-24"}}, StandardLayout(), quietLogger())
	if n.Dated() {
		t.Fatalf("standard layout should reject two-digit years")
	}
}

func TestResolveLink(t *testing.T) {
	standard := StandardLayout()
	results := ResultsLayout()

	cases := []struct {
		href   string
		layout Layout
		want   string
	}{
		{"/notices/a.pdf", standard, "http://ipu.ac.in/notices/a.pdf"},
		{"notices/a.pdf", standard, "notices/a.pdf"},
		{"http://example.com/a.pdf", standard, "http://example.com/a.pdf"},
		{"//cdn.example.com/a.pdf", standard, "http://cdn.example.com/a.pdf"},
		{"res/btech.pdf", results, "http://164.100.158.135/res/btech.pdf"},
		{"/res/btech.pdf", results, "http://164.100.158.135/res/btech.pdf"},
		{"https://other.example.com/r.pdf", results, "https://other.example.com/r.pdf"},
		{"//cdn.example.com/r.pdf", results, "http://cdn.example.com/r.pdf"},
	}
	for _, c := range cases {
		if got := resolveLink(c.href, c.layout); got != c.want {
			t.Fatalf("resolveLink(%q, %s) = %q, want %q", c.href, c.layout.Kind, got, c.want)
		}
	}
}

func TestExtractMissingFields(t *testing.T) {
	n := Extract(Row{}, StandardLayout(), quietLogger())
	if n.Dated() || n.Link != "" {
		t.Fatalf("empty row should yield undated notice without link: %+v", n)
	}
	if n.Description != "Could not extract description." {
		t.Fatalf("description = %q", n.Description)
	}
	if n.Title != "Couldn't extract title." {
		t.Fatalf("title = %q", n.Title)
	}

	n = Extract(Row{Cells: []string{"Notice", "02-01-2024"}, HasAnchor: true, Href: "  "}, StandardLayout(), quietLogger())
	if n.Link != "" {
		t.Fatalf("empty href should leave link empty, got %q", n.Link)
	}
	if n.Title != "Tue, 02 Jan 2024" {
		t.Fatalf("other fields should survive a missing link, title = %q", n.Title)
	}
}

func TestExtractInvalidUTF8(t *testing.T) {
	n := Extract(Row{Cells: []string{"bad \xff byte", "02-01-2024"}}, StandardLayout(), quietLogger())
	if n.Description != "bad \uFFFD byte" {
		t.Fatalf("description = %q", n.Description)
	}
}

func TestExtractNilLogger(t *testing.T) {
	n := Extract(Row{Cells: []string{"Notice", "bad"}}, StandardLayout(), nil)
	if n.Dated() {
		t.Fatalf("expected undated notice")
	}
}
