package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/platinummonkey/zoneorder/internal/assemble"
	"github.com/platinummonkey/zoneorder/internal/logger"
	"github.com/platinummonkey/zoneorder/internal/output"
	"github.com/platinummonkey/zoneorder/internal/paragraph"
	"github.com/platinummonkey/zoneorder/internal/structure"
	"github.com/platinummonkey/zoneorder/internal/textsrc"
	"github.com/platinummonkey/zoneorder/internal/zones"
)

// requestError carries the status code an extraction failure maps to
type requestError struct {
	code int
	err  error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{code: http.StatusBadRequest, err: err}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.status.Ready() {
		writeError(w, http.StatusServiceUnavailable, errors.New("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJson(w, s.status.GetStatus())
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	format, err := output.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	doc, ok := s.extract(w, r, start)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, doc, format); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err, time.Since(start))
		return
	}

	s.served(r, len(doc), time.Since(start))
	w.Header().Set("Content-Type", output.ContentType(format))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleParagraphs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, ok := s.extract(w, r, start)
	if !ok {
		return
	}

	opts := paragraph.Options{Lang: s.htmlLang}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		opts.Lang = lang
	}

	var buf bytes.Buffer
	if err := paragraph.RenderHTML(&buf, paragraph.Build(doc), opts); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err, time.Since(start))
		return
	}

	s.served(r, len(doc), time.Since(start))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// extract runs the pipeline over the request body. On failure it has already
// written the error response.
func (s *Server) extract(w http.ResponseWriter, r *http.Request, start time.Time) (structure.Document, bool) {
	log := s.logger.WithRequestID(RequestID(r.Context())).WithFields("path", r.URL.Path)

	doc, err := s.runExtraction(w, r, log)
	if err != nil {
		code := http.StatusUnprocessableEntity
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			code = reqErr.code
		}
		s.fail(w, r, code, err, time.Since(start))
		return nil, false
	}
	return doc, true
}

func (s *Server) runExtraction(w http.ResponseWriter, r *http.Request, log *logger.Logger) (structure.Document, error) {
	zoneOpts, err := s.zoneOptions(r)
	if err != nil {
		return nil, badRequest(err)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{code: http.StatusRequestEntityTooLarge, err: err}
		}
		return nil, badRequest(fmt.Errorf("failed to read body: %w", err))
	}
	if len(body) == 0 {
		return nil, badRequest(errors.New("request body is empty"))
	}

	src, err := s.openSource(body, r.Header.Get("Content-Type"), log)
	if err != nil {
		return nil, badRequest(err)
	}
	defer src.Close()

	a, err := assemble.New(&assemble.Config{
		Zones:  zoneOpts,
		Order:  s.orderOpts,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assembler: %w", err)
	}

	result, err := a.Document(r.Context(), src)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// zoneOptions applies the footer_margin, header_margin and no_image_text
// query parameters over the server defaults
func (s *Server) zoneOptions(r *http.Request) (zones.Options, error) {
	opts := s.zoneOpts
	query := r.URL.Query()

	if val := query.Get("footer_margin"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid footer_margin %q: %w", val, err)
		}
		opts.FooterMargin = f
	}

	if val := query.Get("header_margin"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid header_margin %q: %w", val, err)
		}
		opts.HeaderMargin = f
	}

	if val := query.Get("no_image_text"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return opts, fmt.Errorf("invalid no_image_text %q: %w", val, err)
		}
		opts.NoImageText = b
	}

	return opts, opts.Validate()
}

// openSource decodes a PDF (sniffed by its header) or a JSON/YAML dump
// (chosen by content type)
func (s *Server) openSource(body []byte, contentType string, log *logger.Logger) (textsrc.Source, error) {
	if bytes.HasPrefix(body, []byte("%PDF-")) {
		return openPDFBody(body, log)
	}

	format := textsrc.DumpJSON
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
			format = textsrc.DumpYAML
		}
	}

	src, err := textsrc.ReadDump(bytes.NewReader(body), format)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// tempSource removes its backing file on Close
type tempSource struct {
	textsrc.Source
	path string
}

func (t *tempSource) Close() error {
	err := t.Source.Close()
	if rmErr := os.Remove(t.path); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

func openPDFBody(body []byte, log *logger.Logger) (textsrc.Source, error) {
	f, err := os.CreateTemp("", "zoneorder-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	src, err := textsrc.OpenPDF(path, log)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return &tempSource{Source: src, path: path}, nil
}

func (s *Server) served(r *http.Request, pages int, duration time.Duration) {
	s.status.RequestServed(duration)
	s.logger.WithRequestID(RequestID(r.Context())).WithFields(
		"path", r.URL.Path,
		"pages", pages,
		"duration", duration,
	).Info("Request served")
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, err error, duration time.Duration) {
	s.status.RequestFailed(err, duration)
	s.logger.WithRequestID(RequestID(r.Context())).WithFields(
		"path", r.URL.Path,
		"status", code,
		"error", err,
	).Warn("Request failed")
	writeError(w, code, err)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	_, _ = w.Write([]byte(text + "\n"))
}
