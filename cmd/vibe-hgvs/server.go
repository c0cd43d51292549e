package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// maxBatchVariants bounds the variants accepted by one POST request.
const maxBatchVariants = 1000

type hgvsRequest struct {
	Variants []string `json:"variants"`
}

type variantResult struct {
	Variant string   `json:"variant"`
	HGVS    []string `json:"hgvs"`
	Error   string   `json:"error,omitempty"`
}

type hgvsResponse struct {
	RunID   string          `json:"run_id"`
	Results []variantResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type server struct {
	ann    *annotate.Annotator
	logger *zap.Logger
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/hgvs", func(r chi.Router) {
		r.Post("/", s.handleBatch)
		r.Get("/{variant}", s.handleVariant)
	})
	return r
}

// handleBatch computes HGVS for a JSON list of variants. Per-variant
// failures are reported in the result and do not fail the request.
func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req hgvsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid request body"})
		return
	}
	if len(req.Variants) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{"no variants given"})
		return
	}
	if len(req.Variants) > maxBatchVariants {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{"too many variants"})
		return
	}

	resp := hgvsResponse{RunID: s.ann.RunID(), Results: make([]variantResult, 0, len(req.Variants))}
	for _, input := range req.Variants {
		res, _ := s.compute(r, input)
		resp.Results = append(resp.Results, res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVariant computes HGVS for a single variant in the URL path.
func (s *server) handleVariant(w http.ResponseWriter, r *http.Request) {
	res, status := s.compute(r, chi.URLParam(r, "variant"))
	if status != http.StatusOK {
		writeJSON(w, status, errorResponse{res.Error})
		return
	}
	writeJSON(w, http.StatusOK, hgvsResponse{RunID: s.ann.RunID(), Results: []variantResult{res}})
}

// compute parses and annotates one variant, returning the HTTP status a
// single-variant request would get.
func (s *server) compute(r *http.Request, input string) (variantResult, int) {
	res := variantResult{Variant: input, HGVS: []string{}}
	v, err := vcf.ParseGenomic(input)
	if err != nil {
		res.Error = err.Error()
		return res, http.StatusBadRequest
	}
	res.Variant = v.Key()

	out, err := s.ann.Annotate(r.Context(), &v)
	if err != nil {
		res.Error = err.Error()
		if errors.Is(err, hgvs.ErrUnsupportedVariantFormat) {
			return res, http.StatusUnprocessableEntity
		}
		s.logger.Error("failed to compute HGVS",
			zap.String("variant", res.Variant),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err))
		return res, http.StatusInternalServerError
	}
	if out != nil {
		res.HGVS = out
	}
	return res, http.StatusOK
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request with its status and latency.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
