package catalog

type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// Summarize counts products per category. Keys are the stored category
// strings as-is, so "Books" and "books" are counted separately.
func Summarize(products []Product) Stats {
	by := make(map[string]int)
	for _, p := range products {
		by[p.Category]++
	}
	return Stats{Total: len(products), ByCategory: by}
}
