package gutenberg

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// ResolveDownloadURL finds the plain-text file of the book with the given id.
// The first link to a .txt file in the book's file listing wins.
func (c *Client) ResolveDownloadURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty book id: %w", ErrNotFound)
	}

	dir := "/files/" + url.PathEscape(id) + "/"
	body, err := c.getPage(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("book %s: %w", id, err)
	}

	href, err := ParseTextFile(body)
	if err != nil {
		return "", fmt.Errorf("book %s: %w", id, err)
	}

	base, err := url.Parse(c.baseURL + dir)
	if err != nil {
		return "", fmt.Errorf("book %s: %w", id, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("book %s: bad link %q: %w", id, href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// ParseTextFile returns the href of the first .txt link found in the table
// rows of a file listing page. Only the first link of each row is considered.
func ParseTextFile(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	for tr := range findAll(doc, "tr") {
		a := findFirst(tr, "a")
		if a == nil {
			continue
		}
		if href := attr(a, "href"); strings.Contains(href, ".txt") {
			return href, nil
		}
	}
	return "", fmt.Errorf("no text file: %w", ErrNotFound)
}
