package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/pipeline"
	"jobscout-engine/internal/runner"
)

type SearchHandler struct {
	Ctx    context.Context
	CfgVal *atomic.Value // config.Config
	Runner *runner.Runner
}

// searchReq leaves every field optional; missing ones come from the
// configured default search.
type searchReq struct {
	Term     *string `json:"term"`
	Location *string `json:"location"`
	Keywords *string `json:"keywords"`
	Enrich   *bool   `json:"enrich"`
}

func (h SearchHandler) Start(w http.ResponseWriter, r *http.Request) {
	var in searchReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	req := runner.DefaultRequest(h.CfgVal.Load().(config.Config))
	applySearchReq(&req, in)

	reqID := RequestIDFrom(r.Context())
	if err := h.Runner.Start(h.Ctx, req, reqID); err != nil {
		if errors.Is(err, runner.ErrBusy) {
			WriteError(w, r, http.StatusConflict, "busy", err.Error())
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true, "request_id": reqID, "request": req})
}

func applySearchReq(req *pipeline.Request, in searchReq) {
	if in.Term != nil {
		req.Term = *in.Term
	}
	if in.Location != nil {
		req.Location = *in.Location
	}
	if in.Keywords != nil {
		req.Keywords = *in.Keywords
	}
	if in.Enrich != nil {
		req.Enrich = *in.Enrich
	}
}

func (h SearchHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}
