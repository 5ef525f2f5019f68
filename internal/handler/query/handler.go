package query

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"goa.design/clue/log"

	"github.com/w-h-a/factfinder/internal/service/query"
)

const maxBodyBytes = 1 << 20

type Processor interface {
	ProcessQuery(ctx context.Context, question string, id any) (string, error)
}

type request struct {
	Id    json.RawMessage `json:"id"`
	Query string          `json:"query"`
}

type queryHandler struct {
	processor Processor
	timeout   time.Duration
}

func (h *queryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if len(strings.TrimSpace(req.Query)) == 0 {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	id := query.ResolveId(req.Id)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.processor.ProcessQuery(ctx, req.Query, id)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "query failed"})
		if errors.Is(err, query.ErrMalformedAnswer) {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// NewRouter mounts the query endpoint at POST /api/v1/query and a liveness
// probe at GET /healthz.
func NewRouter(processor Processor, timeout time.Duration) *mux.Router {
	if processor == nil {
		panic("processor is required")
	}

	h := &queryHandler{
		processor: processor,
		timeout:   timeout,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/query", h.Handle).Methods(http.MethodPost)
	router.HandleFunc("/healthz", health).Methods(http.MethodGet)

	return router
}
