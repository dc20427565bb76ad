package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/request"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// List returns the printer names for the picker, the default and the
// status of each configured printer.
func (h *PrinterHandler) List(c *gin.Context) {
	status := h.printerService.GetStatus()
	if status == nil {
		status = []service.PrinterStatus{}
	}
	response.OK(c, "Printers retrieved", gin.H{
		"printers": h.printerService.ListPrinters(),
		"default":  h.printerService.DefaultPrinter(),
		"status":   status,
	})
}

// TestPrint sends a test page to one printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	var req request.TestPrintRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	receipt, err := h.printerService.TestPrint(c.Request.Context(), req.Printer)
	if err != nil {
		if receipt != nil {
			response.Partial(c, "Test receipt generated but printing failed", gin.H{"receipt": receipt}, err)
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{
		"receipt": receipt,
	})
}
