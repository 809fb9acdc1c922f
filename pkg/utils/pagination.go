package utils

import "math"

// Listing endpoints page their results. Out-of-range requests are clamped
// rather than rejected.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a normalized page selection
type PageRequest struct {
	Page int
	Size int
}

// PageInfo describes the page a listing response covers
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPageRequest clamps raw query values into a valid page selection
func NewPageRequest(page, size int) PageRequest {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return PageRequest{Page: page, Size: size}
}

// Offset returns the SQL offset of the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// PageInfoFor builds response metadata for a page of totalCount rows
func PageInfoFor(totalCount int64, req PageRequest) PageInfo {
	return PageInfo{
		Page:       req.Page,
		Limit:      req.Size,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(req.Size))),
	}
}
