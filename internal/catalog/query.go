package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 5
)

type ListQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Page is the list endpoint response. Total counts filtered products before
// slicing.
type Page struct {
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Total int       `json:"total"`
	Data  []Product `json:"data"`
}

// ParseListQuery reads category, search, page and limit. Missing page/limit
// take their defaults; anything that is not a positive integer is rejected.
func ParseListQuery(v url.Values) (ListQuery, error) {
	q := ListQuery{
		Category: v.Get("category"),
		Search:   v.Get("search"),
	}

	bad := map[string]string{}
	q.Page = positiveInt(v, "page", defaultPage, bad)
	q.Limit = positiveInt(v, "limit", defaultLimit, bad)

	if len(bad) > 0 {
		return ListQuery{}, &ValidationError{Message: "invalid pagination parameters", Details: bad}
	}
	return q, nil
}

func positiveInt(v url.Values, key string, def int, bad map[string]string) int {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		bad[key] = "must be a positive integer"
		return def
	}
	return n
}

func (q ListQuery) matches(p Product) bool {
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// List filters products and cuts out the requested page. Pages past the end
// are empty, never an error.
func List(products []Product, q ListQuery) Page {
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if q.matches(p) {
			filtered = append(filtered, p)
		}
	}

	return Page{
		Page:  q.Page,
		Limit: q.Limit,
		Total: len(filtered),
		Data:  pageOf(filtered, q.Page, q.Limit),
	}
}

func pageOf(items []Product, page, limit int) []Product {
	total := len(items)

	// (page-1)*limit may overflow for huge inputs; compare by division first.
	if page < 1 || limit < 1 || page-1 > total/limit {
		return []Product{}
	}

	start := (page - 1) * limit
	if start >= total {
		return []Product{}
	}

	end := total
	if limit < total-start {
		end = start + limit
	}
	return items[start:end]
}
