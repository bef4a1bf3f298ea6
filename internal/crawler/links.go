package crawler

import (
	"iter"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Links yields the href of every anchor in body, resolved against the page
// URL base. Hrefs that cannot be parsed are yielded as written so the caller
// can count and discard them.
func Links(base string, body string) iter.Seq[string] {
	return func(yield func(string) bool) {
		baseURL, baseErr := url.Parse(base)
		z := html.NewTokenizer(strings.NewReader(body))
		for {
			tt := z.Next()
			if tt == html.ErrorToken {
				return
			}
			if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
				continue
			}
			name, hasAttr := z.TagName()
			if atom.Lookup(name) != atom.A || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					href := strings.TrimSpace(string(val))
					if !yield(resolve(baseURL, baseErr, href)) {
						return
					}
					break
				}
				if !more {
					break
				}
			}
		}
	}
}

func resolve(base *url.URL, baseErr error, href string) string {
	if baseErr != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
