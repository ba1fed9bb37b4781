package listing

import "bizrwanda/internal/models"

// DefaultPageSize is the number of cards a browse page shows.
const DefaultPageSize = 10

// Page is one slice of an already fetched result set.
type Page struct {
	Items      []models.Listing `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Total      int              `json:"total"`
	TotalPages int              `json:"totalPages"`
}

// FilterByPostType narrows a server-scoped result set to one post type. An
// empty postType returns the input unchanged.
func FilterByPostType(items []models.Listing, postType models.PostType) []models.Listing {
	if postType == "" {
		return items
	}
	out := make([]models.Listing, 0, len(items))
	for _, item := range items {
		if item.PostType == postType {
			out = append(out, item)
		}
	}
	return out
}

// Paginate slices items into fixed size pages. Page numbers start at 1; a
// page past the end is empty.
func Paginate(items []models.Listing, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	// Compare in page units so huge query values cannot overflow.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * pageSize
	}
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}

	return Page{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
