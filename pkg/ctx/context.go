// Package ctx gives product handlers a single *Context in place of the
// (http.ResponseWriter, *http.Request) pair, with helpers that speak the
// API's JSON envelope.
//
//	router.Get("/products/{id}", "products.show", ctx.Wrap(pc.Show))
package ctx

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/catalog/pkg/apperr"
	"github.com/shashiranjanraj/catalog/pkg/bind"
	"github.com/shashiranjanraj/catalog/pkg/response"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair. It is only valid inside the
// handler call; Wrap recycles it afterwards.
type Context struct {
	W http.ResponseWriter
	R *http.Request
}

var pool = sync.Pool{New: func() any { return new(Context) }}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R = w, r
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the caller's address, preferring the first
// X-Forwarded-For hop. The rate limiter and request logger key on it.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// BindJSON decodes the JSON body into dest and runs validation.
// On failure it sends a 400 VALIDATION_ERROR envelope and returns false.
//
//	var input requests.CreateProductRequest
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Fail(apperr.BadRequest(err.Error()))
		return false
	}
	if len(errs) > 0 {
		c.Fail(apperr.Validation(errs))
		return false
	}
	return true
}

// Success sends a 200 envelope.
func (c *Context) Success(message string, data any) {
	response.Success(c.W, message, data)
}

// Created sends a 201 envelope.
func (c *Context) Created(message string, data any) {
	response.Created(c.W, message, data)
}

// Paginated sends a 200 envelope with pagination metadata.
func (c *Context) Paginated(message string, data any, pagination response.Pagination) {
	response.Paginated(c.W, message, data, pagination)
}

// Fail sends the failure envelope for err. Unclassified errors become 500.
func (c *Context) Fail(err error) {
	response.Fail(c.Context(), c.W, err)
}
