package extract

import (
	"errors"
	"fmt"
)

// ErrNotPDF is returned when the bytes do not carry a PDF header.
var ErrNotPDF = errors.New("document is not a PDF")

// DocumentParseError reports that the document could not be decoded.
// Page is 1-based, or 0 when the failure is not tied to a page.
type DocumentParseError struct {
	Page int
	Err  error
}

func (e *DocumentParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("failed to parse document (page %d): %v", e.Page, e.Err)
	}
	return fmt.Sprintf("failed to parse document: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }
