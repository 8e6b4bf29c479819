package listing

// Paginate returns the 1-indexed page of items together with the total page
// count. A page past the end yields an empty, non-nil slice. page must be at
// least 1 and pageSize positive; Apply validates both before calling it.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	if pageSize <= 0 {
		return []T{}, 0
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	// compare before multiplying; (page-1)*pageSize can overflow
	if page > totalPages {
		return []T{}, totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, totalPages
}
