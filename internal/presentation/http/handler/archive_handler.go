package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/domain/repository"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/request"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
	"github.com/sangkips/billdesk/pkg/pagination"
)

// ArchiveHandler serves finalized bills.
type ArchiveHandler struct {
	billing *service.BillingService
	dataDir string
}

// NewArchiveHandler creates a new archive handler. Export and merge
// outputs are confined to dataDir.
func NewArchiveHandler(billing *service.BillingService, dataDir string) *ArchiveHandler {
	return &ArchiveHandler{billing: billing, dataDir: dataDir}
}

// List handles listing archived bills, newest first.
func (h *ArchiveHandler) List(c *gin.Context) {
	var filter request.BillFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	start, err := parseDay(filter.StartDate, false)
	if err != nil {
		response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDay(filter.EndDate, true)
	if err != nil {
		response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		StartDate: start,
		EndDate:   end,
	}

	result, err := h.billing.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

func (h *ArchiveHandler) Get(c *gin.Context) {
	bill, err := h.billing.GetBill(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill retrieved successfully", bill)
}

// Reprint renders an archived bill into a new file and dispatches it.
func (h *ArchiveHandler) Reprint(c *gin.Context) {
	var req request.FinalizeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.billing.Reprint(c.Request.Context(), c.Param("number"), req.Printer)
	writeFinalizeResult(c, "Bill reprinted", result, err)
}

// Export writes every archived bill to an xlsx file in the data directory.
func (h *ArchiveHandler) Export(c *gin.Context) {
	var req request.PathRequest
	if !bindJSON(c, &req) {
		return
	}
	path, ok := resolveDataPath(c, h.dataDir, req.Path)
	if !ok {
		return
	}
	n, err := h.billing.ExportBills(c.Request.Context(), path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bills exported", gin.H{"path": path, "bills": n})
}

// Text returns the text of an archived bill's document.
func (h *ArchiveHandler) Text(c *gin.Context) {
	text, err := h.billing.BillText(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill text extracted", gin.H{"bill_number": c.Param("number"), "text": text})
}

// Merge combines archived bill PDFs into one file in the data directory.
func (h *ArchiveHandler) Merge(c *gin.Context) {
	var req request.MergeRequest
	if !bindJSON(c, &req) {
		return
	}
	path, ok := resolveDataPath(c, h.dataDir, req.Output)
	if !ok {
		return
	}
	pages, err := h.billing.MergeBills(c.Request.Context(), req.Bills, path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Bills merged", gin.H{"path": path, "bills": len(req.Bills), "pages": pages})
}
