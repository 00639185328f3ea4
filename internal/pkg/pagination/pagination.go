package pagination

import (
	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultLimit is the page size when none is requested
	DefaultLimit = 20
	// MaxLimit caps the page size
	MaxLimit = 100
)

// Params holds a resolved page request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes the page returned to the client
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// FromQuery reads ?page= and ?limit= and clamps them
func FromQuery(c *fiber.Ctx) Params {
	return New(c.QueryInt("page", 1), c.QueryInt("limit", DefaultLimit))
}

// New clamps page and limit into range
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// MetaFor builds the metadata for a result set of total rows
func MetaFor(p Params, total int64) Meta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
	}
}
