package services

import (
	"net/url"
	"strconv"
)

// Page is the list envelope shared by rides and ride events.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NewPage builds the envelope with absolute next/previous links derived from
// the request URL. Page 1 links drop the page parameter.
func NewPage[T any](requestURL *url.URL, page int, count int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	p := Page[T]{Count: count, Results: results}
	if page < 1 {
		page = 1
	}
	if int64(page*PageSize) < count {
		link := pageLink(requestURL, page+1)
		p.Next = &link
	}
	if page > 1 {
		link := pageLink(requestURL, page-1)
		p.Previous = &link
	}
	return p
}

func pageLink(requestURL *url.URL, page int) string {
	u := *requestURL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
