package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/batch"
	"github.com/FocuswithJustin/lectio/internal/export"
	"github.com/FocuswithJustin/lectio/internal/logging"
	"github.com/FocuswithJustin/lectio/internal/normalize"
	"github.com/FocuswithJustin/lectio/internal/server"
)

// Version is reported by /health; the CLI sets it at startup.
var Version = "dev"

const maxBodyBytes = 1 << 20

// Transports label metrics.
const (
	transportHTTP      = "http"
	transportBatch     = "batch"
	transportWebSocket = "websocket"
)

// ParseRequest is the body of POST /api/parse and of JSON WebSocket
// frames. Exactly one of Citation and Citations is set.
type ParseRequest struct {
	ID        string   `json:"id,omitempty"`
	Citation  string   `json:"citation,omitempty"`
	Citations []string `json:"citations,omitempty"`
	Strict    bool     `json:"strict,omitempty"`
	Normalize bool     `json:"normalize,omitempty"`
}

// ParseResult describes one resolved citation.
type ParseResult struct {
	// Citation is the text that was parsed, after cleanup.
	Citation  string              `json:"citation"`
	Found     bool                `json:"found"`
	Locations []citation.Location `json:"locations"`
	Compact   string              `json:"compact,omitempty"`
	Display   string              `json:"display,omitempty"`
	OSIS      []string            `json:"osis,omitempty"`
	Section   string              `json:"section,omitempty"`
}

// BatchResponse is the result of a multi-citation request.
type BatchResponse struct {
	Results []batch.Result `json:"results"`
	Summary batch.Summary  `json:"summary"`
}

// ValidateResult reports whether a citation is well formed.
type ValidateResult struct {
	Citation string `json:"citation"`
	Valid    bool   `json:"valid"`
	Error    string `json:"error,omitempty"`
}

// CatalogSummary identifies the serving catalog.
type CatalogSummary struct {
	Name        string `json:"name"`
	Source      string `json:"source"`
	Books       int    `json:"books"`
	Fingerprint string `json:"fingerprint"`
	LoadedAt    string `json:"loaded_at"`
}

// BookInfo describes one catalog book.
type BookInfo struct {
	Ordinal   int    `json:"ordinal"`
	ShortName string `json:"short_name"`
	Name      string `json:"name"`
	OSIS      string `json:"osis,omitempty"`
	Section   string `json:"section,omitempty"`
	Chapters  int    `json:"chapters"`
	Verses    []int  `json:"verses,omitempty"`
}

// BooksResponse is the body of /api/books.
type BooksResponse struct {
	Catalog CatalogSummary `json:"catalog"`
	Books   []BookInfo     `json:"books"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status           string         `json:"status"`
	Version          string         `json:"version"`
	Uptime           string         `json:"uptime"`
	Catalog          CatalogSummary `json:"catalog"`
	WebSocketClients int            `json:"websocket_clients"`
}

func (st *catalogState) summary() CatalogSummary {
	return CatalogSummary{
		Name:        st.cat.Name(),
		Source:      st.source,
		Books:       st.cat.Len(),
		Fingerprint: st.fingerprint,
		LoadedAt:    st.loadedAt.UTC().Format(time.RFC3339),
	}
}

func newParseResult(cat *catalog.Catalog, text string, set *citation.LocationSet) ParseResult {
	r := ParseResult{Citation: text, Locations: []citation.Location{}}
	if set == nil {
		return r
	}
	r.Found = true
	r.Locations = set.Locations
	r.Compact = citation.FormatLocations(set.Locations)
	r.Display = set.Citation(cat)
	r.OSIS = set.OSIS(cat)
	if section, err := export.Classify(cat, set); err == nil {
		r.Section = string(section)
	}
	return r
}

// cleanCitation sanitizes untrusted input and optionally applies the
// lectionary link cleanup.
func (s *Server) cleanCitation(raw string, norm bool) string {
	text := server.SanitizeCitation(raw, s.cfg.MaxCitationLength)
	if norm {
		text = normalize.Link(text)
	}
	return text
}

// parse resolves one citation against the current catalog. A lenient miss
// is a result with Found false; a strict miss is a NotFoundError.
func (s *Server) parse(ctx context.Context, transport, raw string, strict, norm bool) (res ParseResult, err error) {
	st := s.state.Load()
	text := s.cleanCitation(raw, norm)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*errors.PreconditionError)
			if !ok {
				panic(r)
			}
			err = pe
		}
		outcome := OutcomeOK
		switch {
		case errors.Is(err, errors.ErrNotFound), err == nil && !res.Found:
			outcome = OutcomeNotFound
		case errors.Is(err, errors.ErrInvalidInput):
			outcome = OutcomeInvalid
		case err != nil:
			outcome = OutcomeError
		}
		s.metrics.ObserveParse(transport, outcome, time.Since(start))
		if err != nil {
			logging.CitationRejected(ctx, text, err, "transport", transport)
		} else {
			logging.CitationParsed(ctx, text, len(res.Locations), "transport", transport)
		}
	}()

	if text == "" {
		return ParseResult{}, errors.NewValidation("citation", "citation is empty")
	}
	key := st.fingerprint + "\x00" + strconv.FormatBool(strict) + "\x00" + text
	if cached, ok := s.cachedResult(key); ok {
		return cached, nil
	}
	if strict {
		set, err := st.parser.ParseStrict(text)
		if err != nil {
			return ParseResult{Citation: text}, err
		}
		res = newParseResult(st.cat, text, set)
	} else {
		set, _ := st.parser.Parse(text)
		res = newParseResult(st.cat, text, set)
	}
	if s.results != nil {
		s.results.Put(key, res)
	}
	return res, nil
}

// cachedResult looks key up in the parse result cache. Only successful
// parses are cached; their slices are shared and must not be modified.
func (s *Server) cachedResult(key string) (ParseResult, bool) {
	if s.results == nil {
		return ParseResult{}, false
	}
	res, ok := s.results.Get(key)
	if ok {
		s.metrics.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		s.metrics.cacheLookups.WithLabelValues("miss").Inc()
	}
	return res, ok
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, CodeNotFound, "endpoint not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, HealthInfo{
		Status:           "healthy",
		Version:          Version,
		Uptime:           time.Since(s.started).Round(time.Second).String(),
		Catalog:          s.state.Load().summary(),
		WebSocketClients: s.hub.ClientCount(),
	})
}

// handleParseQuery serves GET /api/parse?q=...&strict=&normalize=.
func (s *Server) handleParseQuery(w http.ResponseWriter, r *http.Request) {
	res, err := s.parse(r.Context(), transportHTTP, r.URL.Query().Get("q"),
		queryBool(r, "strict"), queryBool(r, "normalize"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, res)
}

// handleParseBody serves POST /api/parse with a ParseRequest body.
func (s *Server) handleParseBody(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "invalid request body: "+err.Error())
		return
	}

	switch {
	case req.Citation != "" && len(req.Citations) > 0:
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "set either citation or citations, not both")
	case len(req.Citations) > 0:
		s.parseBatch(w, r, req)
	default:
		res, err := s.parse(r.Context(), transportHTTP, req.Citation, req.Strict, req.Normalize)
		if err != nil {
			respondErr(w, r, err)
			return
		}
		respond(w, r, http.StatusOK, res)
	}
}

func (s *Server) parseBatch(w http.ResponseWriter, r *http.Request, req ParseRequest) {
	if len(req.Citations) > s.cfg.MaxBatch {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput,
			fmt.Sprintf("at most %d citations per request", s.cfg.MaxBatch))
		return
	}
	st := s.state.Load()
	// Batch workers cannot recover a lazy-load panic, so load every verse
	// table up front.
	if err := st.cat.RequireVerseCounts(); err != nil {
		respondErr(w, r, err)
		return
	}

	inputs := make([]string, len(req.Citations))
	for i, c := range req.Citations {
		inputs[i] = s.cleanCitation(c, false)
	}
	start := time.Now()
	results, err := batch.ParseAll(r.Context(), st.parser, inputs, batch.Options{
		Workers:   s.cfg.Workers,
		Strict:    req.Strict,
		Normalize: req.Normalize,
	})
	if err != nil {
		respondErr(w, r, errors.Wrap(err, "batch parse"))
		return
	}
	elapsed := time.Since(start) / time.Duration(max(len(results), 1))
	for _, res := range results {
		s.metrics.ObserveParse(transportBatch, string(res.Status), elapsed)
	}
	respondList(w, r, BatchResponse{Results: results, Summary: batch.Summarize(results)}, len(results))
}

// handleValidate serves GET /api/validate?q=..., a syntax-only check.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	text := s.cleanCitation(r.URL.Query().Get("q"), queryBool(r, "normalize"))
	if text == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "query parameter q is required")
		return
	}
	res := ValidateResult{Citation: text, Valid: true}
	if err := s.state.Load().parser.Validate(text); err != nil {
		res.Valid = false
		res.Error = err.Error()
	}
	respond(w, r, http.StatusOK, res)
}

// handleCodes serves GET /api/codes?q=..., the flat expanded code list.
func (s *Server) handleCodes(w http.ResponseWriter, r *http.Request) {
	text := s.cleanCitation(r.URL.Query().Get("q"), queryBool(r, "normalize"))
	if text == "" {
		respondError(w, r, http.StatusBadRequest, CodeInvalidInput, "query parameter q is required")
		return
	}
	st := s.state.Load()
	if err := st.cat.RequireVerseCounts(); err != nil {
		respondErr(w, r, err)
		return
	}
	codes := st.parser.Codes(text)
	if codes == nil {
		codes = []citation.SearchCode{}
	}
	respondList(w, r, codes, len(codes))
}

func bookInfo(b catalog.Book) BookInfo {
	return BookInfo{
		Ordinal:   b.Ordinal,
		ShortName: b.ShortName,
		Name:      b.Name,
		OSIS:      b.OSIS,
		Section:   string(b.Section),
		Chapters:  b.Chapters,
	}
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	st := s.state.Load()
	books := st.cat.Books()
	out := BooksResponse{Catalog: st.summary(), Books: make([]BookInfo, len(books))}
	for i, b := range books {
		out.Books[i] = bookInfo(b)
	}
	respondList(w, r, out, len(books))
}

// handleBook serves one book with its verse table. The ordinal may also be
// given as a short name.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	st := s.state.Load()
	key := strings.TrimSpace(r.PathValue("ordinal"))
	ord, err := strconv.Atoi(key)
	if err != nil {
		var ok bool
		if ord, ok = st.cat.BookOrdinal(key); !ok {
			respondErr(w, r, errors.NewNotFound("book", key))
			return
		}
	}
	b, ok := st.cat.Book(ord)
	if !ok {
		respondErr(w, r, errors.NewNotFound("book", key))
		return
	}
	if err := st.cat.RequireVerseCounts(); err != nil {
		respondErr(w, r, err)
		return
	}
	info := bookInfo(b)
	info.Verses = make([]int, b.Chapters)
	for ch := 1; ch <= b.Chapters; ch++ {
		info.Verses[ch-1] = st.cat.VerseCount(ord, ch)
	}
	respond(w, r, http.StatusOK, info)
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	st := s.state.Load()
	respond(w, r, http.StatusOK, map[string]string{
		"pattern":     st.parser.Pattern(),
		"fingerprint": st.fingerprint,
	})
}
