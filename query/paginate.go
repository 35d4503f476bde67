package query

// PageInfo holds the display values derived from list metadata.
type PageInfo struct {
	TotalPages int
	RangeStart int
	RangeEnd   int
	CanPrev    bool
	CanNext    bool
}

// Pages computes page arithmetic from (total, page, limit). It does not clamp
// page: callers check CanPrev/CanNext before navigating. limit must be > 0.
func Pages(total, page, limit int) PageInfo {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	rangeEnd := page * limit
	if rangeEnd > total {
		rangeEnd = total
	}
	rangeStart := (page-1)*limit + 1
	if rangeStart > rangeEnd {
		// Empty page (total 0, or page past the end).
		rangeStart, rangeEnd = 0, 0
	}

	return PageInfo{
		TotalPages: totalPages,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		CanPrev:    page > 1,
		CanNext:    page < totalPages,
	}
}
