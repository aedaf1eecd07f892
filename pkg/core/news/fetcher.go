package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves recent news for a ticker. Implementations are the
// only part of this package that touches the network.
type Fetcher interface {
	FetchNews(ctx context.Context, ticker string, days int) ([]Item, error)
}

const eastmoneySearchURL = "https://so.eastmoney.com/news/s?keyword=%s"

// EastMoneyFetcher scrapes the East Money news search results page.
type EastMoneyFetcher struct {
	// BaseURL overrides the search endpoint, mainly for tests.
	BaseURL string
	Client  *http.Client

	Now func() time.Time
}

func (f *EastMoneyFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (f *EastMoneyFetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FetchNews downloads the search page and keeps items published within
// the window.
func (f *EastMoneyFetcher) FetchNews(ctx context.Context, ticker string, days int) ([]Item, error) {
	base := f.BaseURL
	if base == "" {
		base = eastmoneySearchURL
	}
	url := fmt.Sprintf(base, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; valueinvest/1.0)")

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news source returned status %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse news html: %w", err)
	}

	items := f.parseList(doc, ticker)
	if days <= 0 {
		days = 30
	}
	cutoff := f.now().AddDate(0, 0, -days)

	var recent []Item
	for _, item := range items {
		if item.PublishDate.IsZero() || !item.PublishDate.Before(cutoff) {
			recent = append(recent, item)
		}
	}
	return recent, nil
}

// parseList extracts news items from the search results markup. Items
// without a title are skipped; unparsable dates are left zero so the
// caller can decide.
func (f *EastMoneyFetcher) parseList(doc *goquery.Document, ticker string) []Item {
	var items []Item
	doc.Find("div.news-item").Each(func(_ int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(".news-item-t a").Text())
		if title == "" {
			return
		}
		url, _ := sel.Find(".news-item-t a").Attr("href")
		content := strings.TrimSpace(sel.Find(".news-item-c").Text())
		dateText := strings.TrimSpace(sel.Find(".news-item-time").Text())

		items = append(items, Item{
			Ticker:      ticker,
			Title:       title,
			Content:     content,
			Source:      "eastmoney",
			URL:         url,
			PublishDate: parseNewsDate(dateText),
		})
	})
	return items
}

var newsDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006年01月02日 15:04",
	"2006年01月02日",
}

func parseNewsDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range newsDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
