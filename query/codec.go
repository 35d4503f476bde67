// Package query implements the contract between raw URL parameters and the
// resolved list query: an order-preserving parameter mapping, a total decoder
// with per-field defaults, and the page arithmetic derived from list metadata.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"muselib/model"
)

// LimitOptions are the page sizes offered by UIs. The codec does not enforce
// membership: any numeric limit is accepted, range policy belongs to the caller.
var LimitOptions = []int{5, 10, 20, 50}

// Param is one raw query-string entry.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered raw parameter mapping. Order is preserved across Set so
// that re-encoded URLs stay stable and shareable.
type Params []Param

// ParseParams splits a raw query string ("page=2&limit=10") into Params,
// keeping the order of appearance. Entries that fail to unescape are dropped.
func ParseParams(rawQuery string) Params {
	var params Params
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		n, err := url.QueryUnescape(name)
		if err != nil {
			continue
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		params = append(params, Param{Name: n, Value: v})
	}
	return params
}

// Get returns the value of the first entry named name.
func (p Params) Get(name string) (string, bool) {
	for _, entry := range p {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return "", false
}

// Set returns a copy of p with name set to value. An existing entry is
// replaced in place, keeping its position; a new name is appended. No other
// entry is touched or removed.
func (p Params) Set(name, value string) Params {
	out := make(Params, len(p))
	copy(out, p)
	for i, entry := range out {
		if entry.Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Param{Name: name, Value: value})
}

// Encode serializes the params back into a query string, preserving order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, entry := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(entry.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(entry.Value))
	}
	return b.String()
}

// Decode resolves raw parameters into a fully-defaulted ListQuery. It never
// fails: unparseable or out-of-enum input falls back to the field's default.
func Decode(p Params) model.ListQuery {
	q := model.DefaultListQuery()

	if raw, ok := p.Get("page"); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			q.Page = n
		}
	}
	if raw, ok := p.Get("limit"); ok {
		// Any positive numeric value is accepted, even outside LimitOptions.
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			q.Limit = n
		}
	}
	if raw, ok := p.Get("sort"); ok {
		switch raw {
		case model.SortTitle, model.SortArtist, model.SortAlbum, model.SortCreatedAt:
			q.Sort = raw
		}
	}
	if raw, ok := p.Get("order"); ok {
		if raw == model.OrderAsc || raw == model.OrderDesc {
			q.Order = raw
		}
	}
	if raw, ok := p.Get("search"); ok {
		q.Search = raw
	}
	if raw, ok := p.Get("genre"); ok {
		q.Genre = raw
	}
	if raw, ok := p.Get("artist"); ok {
		q.Artist = raw
	}

	return q
}
