package errors_test

import (
	"fmt"
	"io/fs"

	"github.com/hsliu/cnstock/internal/errors"
)

// Example_basic demonstrates basic error creation and checking.
func Example_basic() {
	// Create a simple error
	err := errors.UnknownSource("yahoo")
	fmt.Println(err)

	// Check the error code
	if errors.Is(err, errors.CodeUnknownSource) {
		fmt.Println("Unknown data source")
	}

	// Output:
	// UNKNOWN_SOURCE: data source "yahoo" is not supported for this operation
	// Unknown data source
}

// Example_wrapping demonstrates error wrapping.
func Example_wrapping() {
	// Simulate an upstream I/O error
	ioErr := fs.ErrNotExist

	// Wrap it with a coded error
	err := errors.SourceUnavailable("sina", ioErr)
	fmt.Println(err)

	// Extract the code
	code := errors.Code(err)
	fmt.Println("Error code:", code)

	// Output:
	// SOURCE_UNAVAILABLE: data source "sina" failed: file does not exist
	// Error code: SOURCE_UNAVAILABLE
}

// Example_checking demonstrates different ways to check errors.
func Example_checking() {
	err := errors.UnsupportedFormat("yaml")

	// Method 1: Use the Is helper
	if errors.Is(err, errors.CodeUnsupportedFormat) {
		fmt.Println("Unsupported format")
	}

	// Method 2: Extract and compare code
	if errors.Code(err) == errors.CodeUnsupportedFormat {
		fmt.Println("Still unsupported")
	}

	// Method 3: Use the full error value
	var cnErr *errors.Error
	if e := err; e != nil {
		cnErr = e
		fmt.Printf("Code: %s, Message: %s\n", cnErr.Code, cnErr.Message)
	}

	// Output:
	// Unsupported format
	// Still unsupported
	// Code: UNSUPPORTED_FORMAT, Message: output format "yaml" is not supported
}
