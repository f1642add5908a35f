// Package errors provides typed error handling for cnstock operations.
//
// Every error carries a stable code that is surfaced to MCP clients in
// tool-invocation failures.
//
// Example usage:
//
//	// Creating errors
//	err := errors.UnknownSource("tushare")
//	err := errors.EmptyResult("sina")
//
//	// Wrapping errors
//	err := errors.SourceUnavailable("eastmoney", httpErr)
//
//	// Checking error codes
//	if errors.Is(err, errors.CodeEmptyResult) {
//	    // try the next source
//	}
//
//	// Extracting codes
//	code := errors.Code(err)
//	if code == errors.CodeAllSourcesFailed {
//	    // surface to the client
//	}
//
//	// Stdlib compatibility
//	var cnErr *errors.Error
//	if errors.As(err, &cnErr) {
//	    fmt.Println(cnErr.Code, cnErr.Message)
//	}
package errors
