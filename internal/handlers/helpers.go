package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// getUserIDFromContext returns the authenticated user id, or 0 for
// anonymous requests
func getUserIDFromContext(c echo.Context) uint {
	id, _ := c.Get(middleware.UserIDKey).(uint)
	return id
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return uint(id), nil
}

// bindAndValidate decodes the body into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type pagination struct {
	page  int
	limit int
}

func (p pagination) offset() int { return (p.page - 1) * p.limit }

func parsePagination(c echo.Context) pagination {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return pagination{page: page, limit: limit}
}

// newPage wraps one page of results with absolute next/previous links that
// keep the request's other query parameters
func newPage[T any](c echo.Context, p pagination, total int64, results []T) models.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := models.Page[T]{Count: total, Results: results}
	if int64(p.page*p.limit) < total {
		out.Next = pageLink(c, p.page+1)
	}
	if p.page > 1 {
		out.Previous = pageLink(c, p.page-1)
	}
	return out
}

func pageLink(c echo.Context, page int) *string {
	req := c.Request()
	u := url.URL{
		Scheme: c.Scheme(),
		Host:   req.Host,
		Path:   req.URL.Path,
	}
	q := req.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}
