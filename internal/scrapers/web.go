package scrapers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/matsen/entryscrape/internal/bibtex"
	"github.com/matsen/entryscrape/internal/network"
	"github.com/matsen/entryscrape/internal/payload"
)

// webPayload returns the web content payload and its parsed URL when p is
// an http(s) page.
func webPayload(p payload.Payload) (payload.WebContent, *url.URL, bool) {
	wc, ok := p.(payload.WebContent)
	if !ok || !payload.IsWeb(wc.URL) {
		return payload.WebContent{}, nil, false
	}
	u, err := url.Parse(wc.URL)
	if err != nil || u.Host == "" {
		return payload.WebContent{}, nil, false
	}
	return wc, u, true
}

// hostIs reports whether host is domain or one of its subdomains.
func hostIs(host, domain string) bool {
	host = strings.ToLower(host)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// webRequest forwards the page cookies.
func webRequest(wc payload.WebContent) network.Request {
	req := network.Request{Retry: network.DefaultRetry}
	if wc.Cookies != "" {
		req.Headers = map[string]string{"Cookie": wc.Cookies}
	}
	return req
}

// pageHTML returns the rendered page, fetching it when the payload has none.
func pageHTML(ctx context.Context, net Fetcher, wc payload.WebContent) (string, error) {
	if strings.TrimSpace(wc.Document) != "" {
		return wc.Document, nil
	}
	res, err := net.Get(ctx, wc.URL, webRequest(wc))
	if err != nil {
		return "", err
	}
	return string(res.Body), nil
}

// document parses the page returned by pageHTML.
func document(ctx context.Context, net Fetcher, wc payload.WebContent) (*goquery.Document, error) {
	html, err := pageHTML(ctx, net, wc)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", wc.URL, err)
	}
	return doc, nil
}

// metaTags collects <meta> content by lower-cased name or property.
func metaTags(doc *goquery.Document) map[string][]string {
	tags := make(map[string][]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok {
			name, ok = s.Attr("property")
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if !ok || content == "" {
			return
		}
		key := strings.ToLower(strings.TrimSpace(name))
		tags[key] = append(tags[key], content)
	})
	return tags
}

// first returns the first value among the named tags.
func first(tags map[string][]string, names ...string) string {
	for _, n := range names {
		if vs := tags[n]; len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// metaAuthors reads author tags, which may be "Last, First" or "First Last",
// and may hold several names separated by semicolons.
func metaAuthors(tags map[string][]string, names ...string) []string {
	var authors []string
	for _, n := range names {
		for _, v := range tags[n] {
			for _, part := range strings.Split(v, ";") {
				if d := bibtex.ParseName(part).Display(); d != "" {
					authors = append(authors, d)
				}
			}
		}
		if len(authors) > 0 {
			return authors
		}
	}
	return authors
}
