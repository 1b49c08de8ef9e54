// Package gateway is a thin, swappable client for the hosted relational
// store. It performs CRUD against four PostgREST-style collections (users,
// events, tasks, habits) and translates failures into typed errors so callers
// can tell "row absent" apart from "request failed".
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/rishikanchi/Callo/internal/errs"
)

// Gateway talks to one backend project. Safe for concurrent use.
type Gateway struct {
	rest *resty.Client
	log  zerolog.Logger
}

// Option configures a Gateway during construction.
type Option func(*Gateway)

// WithTimeout bounds a single round trip to the backend.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.rest.SetTimeout(d) }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New constructs a Gateway for the given backend. The anon key is sent both
// as the project api key and as a bearer credential, which is what the hosted
// store expects for row-level access.
func New(baseURL, anonKey string, opts ...Option) *Gateway {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", anonKey).
		SetAuthToken(anonKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	g := &Gateway{rest: rc, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// selectAll fetches every row of a table. The backend caps result sets at its
// configured page size; this client's tables are small enough that paging is
// not handled here.
func (g *Gateway) selectAll(ctx context.Context, table string, out any) error {
	op := "select " + table
	resp, err := g.rest.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		Get("/rest/v1/" + table)
	if err != nil {
		return errs.Network(op, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return errs.FromStatus(resp.StatusCode(), resp.String(), op)
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &errs.ClassifiedError{Category: errs.Irrecoverable, Underlying: err}
	}
	return nil
}

// insert writes one row and decodes the returned representation into out when
// out is non-nil.
func (g *Gateway) insert(ctx context.Context, table string, row, out any) error {
	op := "insert " + table
	req := g.rest.R().
		SetContext(ctx).
		SetBody(row)
	if out != nil {
		req.SetHeader("Prefer", "return=representation")
	}
	resp, err := req.Post("/rest/v1/" + table)
	if err != nil {
		return errs.Network(op, err)
	}
	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		return errs.FromStatus(resp.StatusCode(), resp.String(), op)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &errs.ClassifiedError{Category: errs.Irrecoverable, Underlying: err}
		}
	}
	return nil
}

// updateByID patches the allow-listed fields of exactly the row with the
// given id. The id filter is what keeps a single-row update from rewriting
// the whole table.
func (g *Gateway) updateByID(ctx context.Context, table string, id int, fields map[string]any) error {
	op := "update " + table
	resp, err := g.rest.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+strconv.Itoa(id)).
		SetBody(fields).
		Patch("/rest/v1/" + table)
	if err != nil {
		return errs.Network(op, err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return errs.FromStatus(resp.StatusCode(), resp.String(), op)
	}
	return nil
}

// deleteByID removes exactly the row with the given id.
func (g *Gateway) deleteByID(ctx context.Context, table string, id int) error {
	op := "delete " + table
	resp, err := g.rest.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+strconv.Itoa(id)).
		Delete("/rest/v1/" + table)
	if err != nil {
		return errs.Network(op, err)
	}
	if resp.StatusCode() != http.StatusNoContent && resp.StatusCode() != http.StatusOK {
		return errs.FromStatus(resp.StatusCode(), resp.String(), op)
	}
	return nil
}
