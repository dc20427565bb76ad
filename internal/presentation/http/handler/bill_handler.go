package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/request"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
)

// BillHandler handles the bill being composed at the counter.
type BillHandler struct {
	billing   *service.BillingService
	customers *service.CustomerService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billing *service.BillingService, customers *service.CustomerService) *BillHandler {
	return &BillHandler{billing: billing, customers: customers}
}

// Get returns the current bill.
func (h *BillHandler) Get(c *gin.Context) {
	response.OK(c, "Bill retrieved", h.billing.View())
}

// AddItem appends a line. A request carrying only a product name (and
// optionally a quantity) is filled from the catalog.
func (h *BillHandler) AddItem(c *gin.Context) {
	var req request.ItemRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		view *service.BillView
		err  error
	)
	if req.FromCatalog() {
		view, err = h.billing.AddFromCatalog(req.Name, req.Quantity)
	} else {
		view, err = h.billing.AddItem(req.ToInput())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Item added", view)
}

func (h *BillHandler) EditItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var req request.ItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.billing.EditItem(index, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated", view)
}

func (h *BillHandler) DeleteItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	view, err := h.billing.DeleteItem(index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item deleted", view)
}

func (h *BillHandler) DuplicateItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	view, err := h.billing.DuplicateItem(index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item duplicated", view)
}

func (h *BillHandler) MoveItem(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	var req request.MoveItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.billing.MoveItem(index, req.ToDirection())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item moved", view)
}

// SetCustomer sets the bill's customer, saving them to the customer book
// first when asked.
func (h *BillHandler) SetCustomer(c *gin.Context) {
	var req request.BillCustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	phone := req.Phone
	if req.Save {
		customer, err := h.customers.SaveCustomer(c.Request.Context(), req.Name, req.Phone)
		if err != nil {
			response.Error(c, err)
			return
		}
		phone = customer.Phone
	}
	response.OK(c, "Customer set", h.billing.SetCustomer(req.Name, phone))
}

func (h *BillHandler) SetPayment(c *gin.Context) {
	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.billing.SetPaid(req.Paid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment updated", view)
}

func (h *BillHandler) SetGST(c *gin.Context) {
	var req request.GSTRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.billing.SetGSTPercent(req.Percent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "GST updated", view)
}

func (h *BillHandler) Clear(c *gin.Context) {
	response.OK(c, "Bill cleared", h.billing.Clear())
}

func (h *BillHandler) Undo(c *gin.Context) {
	view, ok := h.billing.Undo()
	if !ok {
		response.OK(c, "Nothing to undo", view)
		return
	}
	response.OK(c, "Undone", view)
}

func (h *BillHandler) Redo(c *gin.Context) {
	view, ok := h.billing.Redo()
	if !ok {
		response.OK(c, "Nothing to redo", view)
		return
	}
	response.OK(c, "Redone", view)
}

// RemoveLowStock drops lines at or below the stock threshold.
func (h *BillHandler) RemoveLowStock(c *gin.Context) {
	var req request.LowStockRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	view, removed := h.billing.RemoveLowStock(req.Threshold)
	response.OK(c, "Low stock items removed", gin.H{
		"bill":    view,
		"removed": removed,
	})
}

// Preview renders the bill without numbering it.
func (h *BillHandler) Preview(c *gin.Context) {
	response.OK(c, "Preview generated", h.billing.Preview())
}

// Finalize numbers, archives and dispatches the bill. When the bill was
// archived but not delivered the result is still returned with a warning.
func (h *BillHandler) Finalize(c *gin.Context) {
	var req request.FinalizeRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.billing.Finalize(c.Request.Context(), req.Printer)
	writeFinalizeResult(c, "Bill finalized", result, err)
}

func writeFinalizeResult(c *gin.Context, message string, result *service.FinalizeResult, err error) {
	if err != nil && result == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		response.Partial(c, message+" but not delivered", result, err)
		return
	}
	response.Created(c, message, result)
}
