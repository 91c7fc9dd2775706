package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flowgrid-dev/flowgrid/pkg/cache"
	gio "github.com/flowgrid-dev/flowgrid/pkg/io"
	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// maxRequestBody caps layout request bodies at 8 MiB. Graph documents are
// small; anything larger is a client error.
const maxRequestBody = 8 << 20

type layoutRequest struct {
	Graph gio.Document `json:"graph"`

	// Options patches the server defaults per field.
	Options *layoutOptions `json:"options,omitempty"`
}

// layoutOptions is the request-side spacing patch: absent fields keep the
// server defaults. The policy fields (twin ordering, self-loop dropping)
// are deliberately not part of the schema.
type layoutOptions struct {
	XMargin   *int `json:"x_margin"`
	YMargin   *int `json:"y_margin"`
	RowMargin *int `json:"row_margin"`
	ColMargin *int `json:"col_margin"`
}

// apply overlays the present fields onto opts.
func (o *layoutOptions) apply(opts *layout.Options) {
	if o == nil {
		return
	}
	if o.XMargin != nil {
		opts.XMargin = *o.XMargin
	}
	if o.YMargin != nil {
		opts.YMargin = *o.YMargin
	}
	if o.RowMargin != nil {
		opts.RowMargin = *o.RowMargin
	}
	if o.ColMargin != nil {
		opts.ColMargin = *o.ColMargin
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// handleLayout computes a layout for the posted graph document. Responses
// are cached by a hash of the graph plus the effective options; a cache
// hit is marked with X-Flowgrid-Cache: hit.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req layoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode request: %v", err))
		return
	}

	opts := s.defaults
	req.Options.apply(&opts)

	graphBytes, err := json.Marshal(req.Graph)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("encode graph: %v", err))
		return
	}
	key := cache.LayoutKey(cache.Hash(graphBytes), opts)

	if body, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		w.Header().Set("X-Flowgrid-Cache", "hit")
		writeJSON(w, http.StatusOK, body)
		return
	} else if err != nil {
		s.logger.Warn("cache get failed", "id", requestIDFrom(ctx), "err", err)
	}

	g, sizes, err := req.Graph.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, _, err := layout.Layout(g, sizes, strings.Compare, opts)
	switch {
	case errors.Is(err, layout.ErrInternal):
		s.logger.Error("layout invariant broken", "id", requestIDFrom(ctx), "err", err)
		writeError(w, http.StatusInternalServerError, "layout failed")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(gio.NewLayoutDocument(result))
	if err != nil {
		s.logger.Error("encode layout failed", "id", requestIDFrom(ctx), "err", err)
		writeError(w, http.StatusInternalServerError, "encode layout")
		return
	}

	if err := s.cache.Set(ctx, key, body, cacheTTL); err != nil {
		s.logger.Warn("cache set failed", "id", requestIDFrom(ctx), "err", err)
	}

	w.Header().Set("X-Flowgrid-Cache", "miss")
	writeJSON(w, http.StatusOK, body)
}
