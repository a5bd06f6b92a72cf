package paging

const (
	// DefaultSize is used when a page is requested without a size.
	DefaultSize = 20
	// MaxSize bounds the size of a single page.
	MaxSize = 100
)

// Request is a resolved, 0-based page request.
type Request struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Resolve turns optional page/size query values into a Request.
// When both are nil the caller wants every match and ok is false.
// A missing half gets its default; negative pages clamp to 0 and sizes are
// clamped to [1, MaxSize].
func Resolve(page, size *int) (req Request, ok bool) {
	if page == nil && size == nil {
		return Request{}, false
	}

	req = Request{Page: 0, Size: DefaultSize}
	if page != nil && *page > 0 {
		req.Page = *page
	}
	if size != nil {
		req.Size = *size
	}
	if req.Size < 1 {
		req.Size = 1
	}
	if req.Size > MaxSize {
		req.Size = MaxSize
	}
	return req, true
}
