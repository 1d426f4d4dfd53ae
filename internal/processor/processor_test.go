package processor

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/LJTian/NoticeHub/internal/collector"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHashURLDeterministicAndDistinct(t *testing.T) {
	url1 := "https://example.com/a"
	url2 := "https://example.com/b"

	h1a := hashURL(url1)
	h1b := hashURL(url1)
	h2 := hashURL(url2)

	if h1a != h1b {
		t.Fatalf("hashURL not deterministic: %q vs %q", h1a, h1b)
	}
	if h1a == h2 {
		t.Fatalf("hashURL should differ for different URLs: %q", h1a)
	}
}

func TestAggregatorDropsUndatedAndSortsNewestFirst(t *testing.T) {
	a := NewAggregator(0, discardLogger())

	src1 := []collector.Notice{
		{Title: "old", Link: "http://x/old", PublishedAt: day(2024, 1, 1)},
		{Title: "undated", Link: "http://x/undated"},
	}
	src2 := []collector.Notice{
		{Title: "new", Link: "http://x/new", PublishedAt: day(2024, 3, 1)},
		{Title: "mid", Link: "http://x/mid", PublishedAt: day(2024, 2, 1)},
	}

	out := a.Process(src1, src2)
	if len(out) != 3 {
		t.Fatalf("expected 3 notices, got %d", len(out))
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if out[i].Title != w {
			t.Fatalf("out[%d].Title = %q, want %q", i, out[i].Title, w)
		}
	}
	for i := 1; i < len(out); i++ {
		if out[i].PublishedAt.After(out[i-1].PublishedAt) {
			t.Fatalf("result not sorted at %d", i)
		}
	}
	for _, n := range out {
		if !n.Dated() {
			t.Fatalf("undated notice survived: %+v", n)
		}
		if n.ID != hashURL(n.Link) {
			t.Fatalf("ID = %q, want hash of link", n.ID)
		}
	}
}

func TestAggregatorDeduplicateKeepsNewest(t *testing.T) {
	a := NewAggregator(0, discardLogger())

	out := a.Process(
		[]collector.Notice{{Title: "older", Link: "http://x/a", PublishedAt: day(2024, 1, 1)}},
		[]collector.Notice{{Title: "newer", Link: "http://x/a", PublishedAt: day(2024, 1, 2)}},
	)
	if len(out) != 1 {
		t.Fatalf("expected 1 notice after dedupe, got %d", len(out))
	}
	if out[0].Title != "newer" || !out[0].PublishedAt.Equal(day(2024, 1, 2)) {
		t.Fatalf("dedupe kept the wrong notice: %+v", out[0])
	}
}

func TestAggregatorStableForEqualDates(t *testing.T) {
	a := NewAggregator(0, discardLogger())
	d := day(2024, 5, 5)

	out := a.Process([]collector.Notice{
		{Title: "first", Link: "http://x/1", PublishedAt: d},
		{Title: "second", Link: "http://x/2", PublishedAt: d},
		{Title: "third", Link: "http://x/3", PublishedAt: d},
	})
	for i, w := range []string{"first", "second", "third"} {
		if out[i].Title != w {
			t.Fatalf("out[%d].Title = %q, want %q (input order)", i, out[i].Title, w)
		}
	}

	// 同日期同链接时保留先出现的
	out = a.Process([]collector.Notice{
		{Title: "kept", Link: "http://x/same", PublishedAt: d},
		{Title: "dropped", Link: "http://x/same", PublishedAt: d},
	})
	if len(out) != 1 || out[0].Title != "kept" {
		t.Fatalf("unexpected result for same-date duplicates: %+v", out)
	}
}

func TestAggregatorTruncatesToCap(t *testing.T) {
	a := NewAggregator(5, discardLogger())

	var items []collector.Notice
	base := day(2024, 1, 1)
	for i := 0; i < 20; i++ {
		items = append(items, collector.Notice{
			Title:       "n",
			Link:        "http://x/" + string(rune('a'+i)),
			PublishedAt: base.AddDate(0, 0, i),
		})
	}
	// 重复链接不应占用名额
	items = append(items, collector.Notice{Link: "http://x/t", PublishedAt: base.AddDate(0, 0, 30)})

	out := a.Process(items)
	if len(out) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(out))
	}
	seen := map[string]bool{}
	for _, n := range out {
		if seen[n.Link] {
			t.Fatalf("duplicate link in output: %s", n.Link)
		}
		seen[n.Link] = true
	}
}

func TestAggregatorDefaultCap(t *testing.T) {
	a := NewAggregator(0, discardLogger())
	if got := a.cap(); got != DefaultCap {
		t.Fatalf("default cap = %d, want %d", got, DefaultCap)
	}

	var items []collector.Notice
	base := day(2020, 1, 1)
	for i := 0; i < DefaultCap+50; i++ {
		items = append(items, collector.Notice{
			Link:        "http://x/" + time.Duration(i).String(),
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	if out := a.Process(items); len(out) != DefaultCap {
		t.Fatalf("expected %d notices, got %d", DefaultCap, len(out))
	}
}

func TestNoticesKeepsOrder(t *testing.T) {
	items := []ProcessedNotice{
		{ID: "1", Notice: collector.Notice{Title: "a"}},
		{ID: "2", Notice: collector.Notice{Title: "b"}},
	}
	out := Notices(items)
	if len(out) != 2 || out[0].Title != "a" || out[1].Title != "b" {
		t.Fatalf("Notices changed order: %+v", out)
	}
}
