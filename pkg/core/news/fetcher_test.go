package news

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const newsListHTML = `
<html><body>
<div class="news-item">
  <div class="news-item-t"><a href="https://example.com/a1">Record profit for the quarter</a></div>
  <div class="news-item-c">Revenue growth beat expectations.</div>
  <div class="news-item-time">2026-02-20 09:30</div>
</div>
<div class="news-item">
  <div class="news-item-t"><a href="https://example.com/a2">Buyback program announced</a></div>
  <div class="news-item-c">The board approved a share repurchase.</div>
  <div class="news-item-time">2026-01-05</div>
</div>
<div class="news-item">
  <div class="news-item-t"><a href="https://example.com/a3"></a></div>
  <div class="news-item-c">No headline here.</div>
  <div class="news-item-time">2026-01-01</div>
</div>
</body></html>`

func TestParseList(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(newsListHTML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	f := &EastMoneyFetcher{}
	items := f.parseList(doc, "600519")

	if len(items) != 2 {
		t.Fatalf("expected 2 items (titleless row skipped), got %d", len(items))
	}
	first := items[0]
	if first.Title != "Record profit for the quarter" {
		t.Errorf("title: got %q", first.Title)
	}
	if first.URL != "https://example.com/a1" {
		t.Errorf("url: got %q", first.URL)
	}
	if first.Content != "Revenue growth beat expectations." {
		t.Errorf("content: got %q", first.Content)
	}
	want := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	if !first.PublishDate.Equal(want) {
		t.Errorf("publish date: got %v, want %v", first.PublishDate, want)
	}
	if first.Ticker != "600519" || first.Source != "eastmoney" {
		t.Errorf("ticker/source: got %s/%s", first.Ticker, first.Source)
	}
}

func TestParseNewsDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-02-20 09:30:15", time.Date(2026, 2, 20, 9, 30, 15, 0, time.UTC)},
		{"2026-02-20 09:30", time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)},
		{"2026-02-20", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{"2026年02月20日", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseNewsDate(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseNewsDate(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}
