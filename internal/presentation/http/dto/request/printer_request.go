package request

// TestPrintRequest names the printer for a test page; empty uses the default.
type TestPrintRequest struct {
	Printer string `json:"printer"`
}
