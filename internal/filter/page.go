package filter

import "github.com/sproutme/sprout-server/internal/domain"

// PageResult is one page of a filtered event set.
type PageResult struct {
	Events     []domain.Event `json:"events"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"` // size of the filtered set
	TotalPages int            `json:"total_pages"`
}

// Paginate slices one page out of the filtered set. Pages are 1-based;
// a request past the end returns an empty page, not the last one.
// Clamping a stale page number into range is the client's job; Total
// and TotalPages give it what it needs.
func Paginate(events []domain.Event, page, size int) PageResult {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(events)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return PageResult{
		Events:     events[start:end],
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ResolvePage decides which page to serve. When the filtered set's size
// differs from the size the client last saw (knownTotal), the view starts
// over at page 1; a stale page into a reshuffled set is meaningless.
// Pass knownTotal < 0 when the client has no prior view.
func ResolvePage(requested, knownTotal, total int) int {
	if knownTotal >= 0 && knownTotal != total {
		return 1
	}
	return requested
}
