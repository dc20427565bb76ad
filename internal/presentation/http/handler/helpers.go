package handler

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
)

const dateLayout = "2006-01-02"

// lineIndex reads the :index path parameter. It writes the error response
// and returns false when the parameter is not a number.
func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "Invalid line index")
		return 0, false
	}
	return index, true
}

// bindJSON binds the request body into req and writes a 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func bindOptionalJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// parseDay parses a YYYY-MM-DD query value. endOfDay moves the result to
// the last instant of that day.
func parseDay(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	t = t.UTC()
	return &t, nil
}

var errOutsideDataDir = errors.New("path must stay inside the data directory")

// dataPath resolves a client-supplied file name against root. Relative
// names are joined to root, absolute names must already lie under it, and
// any ".." element is refused outright.
func dataPath(root, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("path is required")
	}
	if slices.Contains(strings.Split(filepath.ToSlash(name), "/"), "..") {
		return "", errOutsideDataDir
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)
	rel, err := filepath.Rel(absRoot, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideDataDir
	}
	return path, nil
}

// resolveDataPath is dataPath for handlers: it writes the 400 itself and
// creates the parent directory so exports can be written straight away.
func resolveDataPath(c *gin.Context, root, name string) (string, bool) {
	path, err := dataPath(root, name)
	if err != nil {
		response.BadRequest(c, "Invalid path: "+err.Error())
		return "", false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		response.Error(c, err)
		return "", false
	}
	return path, true
}
