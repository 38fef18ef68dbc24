package browser

// PageSizes are the page sizes the review table offers.
var PageSizes = []int{5, 10, 20, 50}

// DefaultPageSize is used until a page-size control changes it.
const DefaultPageSize = 10

// Offset is the index of the first record on page.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// TotalPages is the number of pages needed to show total records.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Window returns the slice of items shown on page. Pages past the end are
// empty.
func Window[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return nil
	}
	start := Offset(page, limit)
	if start >= len(items) {
		return nil
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func validPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}
