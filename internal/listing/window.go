package listing

// PageWindow returns up to width consecutive page numbers around current,
// for pagination footers. The window is shifted, not shrunk, at either end.
func PageWindow(current, totalPages, width int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	if width < 1 {
		width = 1
	}
	if width > totalPages {
		width = totalPages
	}
	current = ClampPage(current, totalPages)

	start := current - width/2
	if start < 1 {
		start = 1
	}
	if start+width-1 > totalPages {
		start = totalPages - width + 1
	}

	pages := make([]int, width)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
