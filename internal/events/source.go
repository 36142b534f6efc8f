// Package events collects market events from public news sources, scores
// them and feeds the event signal generator.
package events

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"quantsim/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Article is one raw scraped news item, before scoring.
type Article struct {
	Title     string
	URL       string
	Summary   string
	Source    string
	Symbol    string
	FetchedAt time.Time
}

// Selectors are the CSS selectors used to pull article data out of a source's
// listing page.
type Selectors struct {
	Container   string
	Title       string
	URL         string
	Summary     string
	PublishedAt string
}

// Source is one scrapeable news site.
type Source struct {
	Name       string
	BaseURL    string
	SearchPath string // {symbol} is replaced with the lowercased symbol
	Selectors  Selectors
	RateLimit  time.Duration
}

// DefaultSources lists the financial news sites scraped out of the box.
func DefaultSources() []Source {
	return []Source{
		{
			Name:       "MoneyControl",
			BaseURL:    "https://www.moneycontrol.com",
			SearchPath: "/news/tags/{symbol}.html",
			Selectors: Selectors{
				Container:   "li.clearfix",
				Title:       "h2 a, h3 a",
				URL:         "h2 a, h3 a",
				Summary:     "p",
				PublishedAt: "span.ago",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "EconomicTimes",
			BaseURL:    "https://economictimes.indiatimes.com",
			SearchPath: "/topic/{symbol}",
			Selectors: Selectors{
				Container:   "div.story-box",
				Title:       "a",
				URL:         "a",
				Summary:     "p",
				PublishedAt: "time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "BusinessStandard",
			BaseURL:    "https://www.business-standard.com",
			SearchPath: "/search?q={symbol}",
			Selectors: Selectors{
				Container:   "div.listing-txt",
				Title:       "a.Hdng",
				URL:         "a.Hdng",
				Summary:     "p",
				PublishedAt: "span.listing-date",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// Scraper fetches news articles for symbols from the configured sources.
type Scraper struct {
	sources []Source
	timeout time.Duration
}

// NewScraper builds a scraper over the default sources.
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{sources: DefaultSources(), timeout: timeout}
}

// NewScraperWithSources builds a scraper over an explicit source list.
func NewScraperWithSources(sources []Source, timeout time.Duration) *Scraper {
	return &Scraper{sources: sources, timeout: timeout}
}

// Fetch scrapes up to maxArticles articles about a symbol across all
// sources. A failing source is logged and skipped.
func (s *Scraper) Fetch(ctx context.Context, symbol string, maxArticles int) []Article {
	if len(s.sources) == 0 || maxArticles <= 0 {
		return nil
	}
	perSource := maxArticles / len(s.sources)
	if perSource < 1 {
		perSource = 1
	}

	var all []Article
	for _, source := range s.sources {
		articles, err := s.fetchSource(ctx, source, symbol, perSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "news source fetch failed", err, "source", source.Name, "symbol", symbol)
			continue
		}
		all = append(all, articles...)
		time.Sleep(source.RateLimit)
	}
	logger.Info(ctx, "news fetch completed", "symbol", symbol, "articles", len(all))
	return all
}

func (s *Scraper) fetchSource(ctx context.Context, source Source, symbol string, maxArticles int) ([]Article, error) {
	var articles []Article

	c := colly.NewCollector(
		colly.AllowedDomains(domainOf(source.BaseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML(source.Selectors.Container, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}
		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}
		link := e.ChildAttr(source.Selectors.URL, "href")
		if link == "" {
			return
		}
		if !strings.HasPrefix(link, "http") {
			link = source.BaseURL + link
		}
		articles = append(articles, Article{
			Title:     title,
			URL:       link,
			Summary:   strings.TrimSpace(e.ChildText(source.Selectors.Summary)),
			Source:    source.Name,
			Symbol:    symbol,
			FetchedAt: time.Now().UTC(),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "scrape request failed", "source", source.Name, "url", r.Request.URL.String(), "error", err)
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{symbol}", strings.ToLower(symbol))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", searchURL, err)
	}
	c.Wait()

	for i := range articles {
		if len(articles[i].Summary) < 100 {
			if body := s.fetchBody(ctx, articles[i].URL); body != "" {
				articles[i].Summary = body
			}
			time.Sleep(500 * time.Millisecond)
		}
	}
	return articles, nil
}

// fetchBody pulls the article text off the detail page. Best effort: an
// empty string keeps the listing summary.
func (s *Scraper) fetchBody(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	var parts []string
	doc.Find("article p, div.article-body p, div.content-body p, div.story-content p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	body := strings.Join(parts, " ")
	if len(body) > 2000 {
		body = body[:2000]
	}
	return body
}

func domainOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return u.Host
}
