package handler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/application/service"
	"github.com/sangkips/billdesk/internal/domain/entity"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/request"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
	"github.com/sangkips/billdesk/pkg/pagination"
)

// ProductHandler handles product master HTTP requests
type ProductHandler struct {
	catalog *service.CatalogService
	jobs    *service.JobTracker
	dataDir string
}

// NewProductHandler creates a new product handler. Server-side import and
// export paths are confined to dataDir.
func NewProductHandler(catalog *service.CatalogService, jobs *service.JobTracker, dataDir string) *ProductHandler {
	return &ProductHandler{catalog: catalog, jobs: jobs, dataDir: dataDir}
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var params pagination.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	result := h.catalog.Search(c.Query("search"), &params)
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Suggest returns products whose name contains q, for type-ahead.
func (h *ProductHandler) Suggest(c *gin.Context) {
	var req request.ProductSuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	products := h.catalog.Suggest(req.Query, req.Limit)
	if products == nil {
		products = []entity.Product{}
	}
	response.OK(c, "Suggestions retrieved", products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	name := c.Param("name")
	product, ok := h.catalog.Lookup(name)
	if !ok {
		response.NotFound(c, "Product "+name+" not found")
		return
	}
	response.OK(c, "Product retrieved successfully", product)
}

// Upsert creates the product or replaces the one with the same name.
func (h *ProductHandler) Upsert(c *gin.Context) {
	var req request.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product := req.ToEntity()
	if err := h.catalog.Upsert(c.Request.Context(), product); err != nil {
		response.Error(c, err)
		return
	}
	if stored, ok := h.catalog.Lookup(product.Name); ok {
		product = &stored
	}
	response.OK(c, "Product saved successfully", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product deleted successfully", nil)
}

// Import starts a background import of a product file. The file is either
// uploaded as the multipart field "file" or named by a JSON {"path"}
// inside the data directory.
func (h *ProductHandler) Import(c *gin.Context) {
	path, cleanup, ok := h.importSource(c)
	if !ok {
		return
	}
	job := h.jobs.Start("product_import", func(ctx context.Context) (any, error) {
		defer cleanup()
		return h.catalog.ImportFile(ctx, path)
	})
	response.Accepted(c, "Import started", job)
}

func (h *ProductHandler) importSource(c *gin.Context) (string, func(), bool) {
	file, err := c.FormFile("file")
	if err != nil {
		var req request.PathRequest
		if !bindJSON(c, &req) {
			return "", nil, false
		}
		path, ok := resolveDataPath(c, h.dataDir, req.Path)
		return path, func() {}, ok
	}

	dir, err := os.MkdirTemp("", "billdesk-import-*")
	if err != nil {
		response.Error(c, err)
		return "", nil, false
	}
	path := filepath.Join(dir, "upload"+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		os.RemoveAll(dir)
		response.Error(c, err)
		return "", nil, false
	}
	return path, func() { os.RemoveAll(dir) }, true
}

// Export writes the product master to a csv or xlsx file in the data
// directory.
func (h *ProductHandler) Export(c *gin.Context) {
	var req request.PathRequest
	if !bindJSON(c, &req) {
		return
	}
	path, ok := resolveDataPath(c, h.dataDir, req.Path)
	if !ok {
		return
	}
	n, err := h.catalog.ExportFile(c.Request.Context(), path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Products exported", gin.H{"path": path, "products": n})
}
