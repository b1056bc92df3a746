//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
)

// ErrorCode is the value of FPDF_GetLastError after a failed call.
type ErrorCode = fpdf.ErrorCode

const (
	CodeSuccess  = fpdf.ErrSuccess
	CodeUnknown  = fpdf.ErrUnknown
	CodeFile     = fpdf.ErrFile
	CodeFormat   = fpdf.ErrFormat
	CodePassword = fpdf.ErrPassword
	CodeSecurity = fpdf.ErrSecurity
	CodePage     = fpdf.ErrPage
)

// Common errors
var (
	// ErrAllocation indicates PDFium returned a null handle.
	ErrAllocation = errors.New("pdfgo: allocation failed")

	// ErrOperation indicates a PDFium call reported failure.
	ErrOperation = errors.New("pdfgo: operation failed")

	// ErrNotInitialized indicates Init has not been called.
	ErrNotInitialized = bindings.ErrNotLoaded

	// ErrClosed indicates the object, or one it depends on, has been closed.
	ErrClosed = errors.New("pdfgo: object is closed")

	// ErrUnsupportedFormat indicates a bitmap format outside the known set.
	ErrUnsupportedFormat = errors.New("pdfgo: unsupported bitmap format")

	// ErrPageIndex indicates a page index out of range.
	ErrPageIndex = errors.New("pdfgo: page index out of range")

	// ErrMemoryLimit indicates a bitmap would exceed the configured limit.
	ErrMemoryLimit = errors.New("pdfgo: memory limit exceeded")

	// ErrBitmapSize indicates bitmap dimensions PDFium cannot represent:
	// non-positive, wider or taller than its int, or a buffer over 4 GiB.
	ErrBitmapSize = errors.New("pdfgo: bitmap size out of range")

	// ErrInvalidRect indicates a rectangle outside the bitmap or with
	// negative size.
	ErrInvalidRect = errors.New("pdfgo: invalid rectangle")

	// ErrNotImage indicates an image operation on another kind of page
	// object.
	ErrNotImage = errors.New("pdfgo: page object is not an image")
)

// Error is a failed PDFium call.
type Error struct {
	Op   string    // Function or operation that failed
	Code ErrorCode // FPDF_GetLastError at the time of failure
	Err  error     // ErrAllocation or ErrOperation
}

func (e *Error) Error() string {
	if e.Code == CodeSuccess {
		return fmt.Sprintf("%v: %s", e.Err, e.Op)
	}
	return fmt.Sprintf("%v: %s: %v", e.Err, e.Op, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// allocError builds the error for a constructor that got a null handle.
func allocError(op string) error {
	return &Error{Op: op, Code: fpdf.LastError(), Err: ErrAllocation}
}

// opError builds the error for a call that reported failure.
func opError(op string) error {
	return &Error{Op: op, Code: fpdf.LastError(), Err: ErrOperation}
}

// Code returns the PDFium error code carried by err, or CodeSuccess.
func Code(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeSuccess
}
