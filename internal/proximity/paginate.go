package proximity

// Page is one window of a sequence.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the 1-indexed pageNumber window of items.
// TotalPages is ceil(len/pageSize) and 0 for an empty sequence. Out of range
// pages and non-positive page sizes yield an empty window rather than an error.
func Paginate[T any](items []T, pageSize, pageNumber int) Page[T] {
	if pageSize < 1 {
		return Page[T]{Items: []T{}}
	}

	total := (len(items) + pageSize - 1) / pageSize
	if pageNumber < 1 || pageNumber > total {
		return Page[T]{Items: []T{}, TotalPages: total}
	}

	start := (pageNumber - 1) * pageSize
	end := min(start+pageSize, len(items))
	window := make([]T, end-start)
	copy(window, items[start:end])
	return Page[T]{Items: window, TotalPages: total}
}
