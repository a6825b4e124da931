package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	serpAPIEndpoint = "https://serpapi.com/search"
	defaultTopK     = 5
	fetchTimeout    = 10 * time.Second
)

var httpClient = &http.Client{Timeout: fetchTimeout}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// serpReply is the subset of SerpAPI's response we read.
type serpReply struct {
	OrganicResults []struct {
		Title                   string   `json:"title"`
		Link                    string   `json:"link"`
		URL                     string   `json:"url"`
		Snippet                 string   `json:"snippet"`
		SnippetHighlightedWords []string `json:"snippet_highlighted_words"`
	} `json:"organic_results"`
}

// SearchWeb queries the configured search provider. Without SEARCH_PROVIDER
// set to serpapi and a SERPAPI_KEY, or on any provider failure, it returns a
// single placeholder result so research can proceed offline.
func SearchWeb(ctx context.Context, query string, topK int) []SearchResult {
	if topK <= 0 {
		topK = defaultTopK
	}
	if os.Getenv("SEARCH_PROVIDER") == "serpapi" {
		if key := os.Getenv("SERPAPI_KEY"); key != "" {
			if results, err := serpSearch(ctx, query, topK, key); err == nil {
				return results
			}
		}
	}
	return []SearchResult{{
		Title:   "Stubbed result for " + query,
		URL:     "https://example.com",
		Snippet: "Search provider not configured; returning placeholder result.",
	}}
}

func serpSearch(ctx context.Context, query string, topK int, key string) ([]SearchResult, error) {
	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"num":     {strconv.Itoa(min(topK, 10))},
		"hl":      {"en"},
		"api_key": {key},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serpAPIEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{resp.StatusCode}
	}
	var reply serpReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, topK)
	for _, item := range reply.OrganicResults {
		if len(out) == topK {
			break
		}
		link := item.Link
		if link == "" {
			link = item.URL
		}
		snippet := item.Snippet
		if snippet == "" {
			snippet = strings.Join(item.SnippetHighlightedWords, " ")
		}
		title := item.Title
		if title == "" {
			title = "Untitled"
		}
		out = append(out, SearchResult{Title: title, URL: link, Snippet: snippet})
	}
	return out, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "search: HTTP " + strconv.Itoa(e.code) }

// ExtractResult is the readable text of a fetched page plus its meta tags.
type ExtractResult struct {
	Text string            `json:"text"`
	Meta map[string]string `json:"meta"`
}

// FetchAndExtract fetches a URL and strips it down to visible text and meta
// tags. Failures come back inside the result (meta["error"]) because page
// fetches are always best-effort.
func FetchAndExtract(ctx context.Context, pageURL string) ExtractResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ExtractResult{Meta: map[string]string{"error": err.Error()}}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return ExtractResult{Meta: map[string]string{"error": err.Error()}}
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ExtractResult{Meta: map[string]string{"error": err.Error()}}
	}

	var parts []string
	meta := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "meta":
				var name, content string
				for _, a := range n.Attr {
					switch a.Key {
					case "name", "property":
						if name == "" {
							name = a.Val
						}
					case "content":
						content = a.Val
					}
				}
				if name != "" && content != "" {
					meta[name] = content
				}
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ExtractResult{Text: strings.Join(strings.Fields(strings.Join(parts, " ")), " "), Meta: meta}
}
