package query

// Ellipsis marks a collapsed run of page numbers in a [PageWindow].
const Ellipsis = -1

// PageWindow returns the page markers to display for a pagination control:
// page 1, the last page, and the two immediate neighbors of the current page,
// with every other run collapsed to a single [Ellipsis] marker.
//
// A pure function of (current, totalPages); totalPages below 1 yields nil and
// current is clamped into range.
func PageWindow(current, totalPages int) []int {
	if totalPages < 1 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	var window []int
	for page := 1; page <= totalPages; page++ {
		visible := page == 1 || page == totalPages || (page >= current-1 && page <= current+1)
		if visible {
			window = append(window, page)
			continue
		}
		if len(window) > 0 && window[len(window)-1] != Ellipsis {
			window = append(window, Ellipsis)
		}
	}

	return window
}
