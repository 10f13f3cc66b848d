// Package server exposes docmorph conversions over HTTP.
//
// Endpoints:
//
//	POST /convert?format=tex      one file in the "file" form field
//	POST /convert-batch?format=md many files in "files", or one .zip in "file"
//	GET  /health
//
// Errors are reported as JSON objects with "error" and "kind" fields.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/netutil"

	"github.com/tsawler/docmorph"
	"github.com/tsawler/docmorph/batch"
	"github.com/tsawler/docmorph/format"
	"github.com/tsawler/docmorph/internal/config"
)

// memoryLimit is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const memoryLimit = 8 << 20

// Options configures a Server. Zero values select the config defaults.
type Options struct {
	MaxFileSize  int64
	MaxBatchSize int64
	Workers      int
	Logger       *slog.Logger
}

// Server is an http.Handler serving the conversion endpoints.
type Server struct {
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = config.DefaultMaxFileSize
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = config.DefaultMaxBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = config.DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{opts: opts, logger: logger, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /convert", s.handleConvert)
	s.mux.HandleFunc("POST /convert-batch", s.handleBatch)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Info("request", "method", r.Method, "path", r.URL.Path,
		"status", rec.status, "duration", time.Since(start))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, s.opts.MaxFileSize); err != nil {
		writeError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest("No file uploaded"))
		return
	}
	defer file.Close()

	name := cleanName(header.Filename)
	from := format.Detect(name)
	if from == format.Unknown {
		writeError(w, &httpError{
			status: http.StatusBadRequest,
			kind:   docmorph.KindOf(docmorph.ErrUnsupportedConversion),
			msg:    "Invalid file type. Please upload a .md, .markdown, .txt, .docx, .pdf or .tex file",
		})
		return
	}
	to, err := target(r, from)
	if err != nil {
		writeError(w, conversionError(err))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()})
		return
	}

	start := time.Now()
	out, warnings, err := docmorph.Convert(data, from, to)
	if err != nil {
		s.logger.Warn("conversion failed", "path", name, "from", from, "to", to, "kind", docmorph.KindOf(err), "err", err)
		writeError(w, conversionError(err))
		return
	}
	s.logger.Info("converted", "path", name, "from", from, "to", to,
		"warnings", len(warnings), "duration", time.Since(start))

	w.Header().Set("X-Docmorph-Warnings", strconv.Itoa(len(warnings)))
	sendFile(w, stem(name)+to.Extension(), to.MIMEType(), out)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := parseUpload(w, r, s.opts.MaxBatchSize); err != nil {
		writeError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var to format.Format
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		if to, err = format.Parse(q); err != nil {
			writeError(w, conversionError(fmt.Errorf("%w: %w", docmorph.ErrUnsupportedConversion, err)))
			return
		}
	}

	tmp, err := os.MkdirTemp("", "docmorph-batch-*")
	if err != nil {
		writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()})
		return
	}
	defer os.RemoveAll(tmp)
	input, output := filepath.Join(tmp, "input"), filepath.Join(tmp, "output")
	if err := os.MkdirAll(input, 0o755); err != nil {
		writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()})
		return
	}

	paths, err := collect(r, input, s.opts.MaxBatchSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(paths) == 0 {
		writeError(w, badRequest("No convertible files found"))
		return
	}

	result, err := batch.ConvertPaths(r.Context(), paths, batch.Options{
		To:        to,
		OutputDir: output,
		Workers:   s.opts.Workers,
		Overwrite: true,
		Logger:    s.logger,
	})
	if err != nil {
		writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()})
		return
	}

	converted := result.Count(batch.StatusConverted)
	w.Header().Set("X-Docmorph-Converted", strconv.Itoa(converted))
	w.Header().Set("X-Docmorph-Failed", strconv.Itoa(result.Count(batch.StatusFailed)))

	if converted == 0 {
		writeError(w, conversionError(firstError(result)))
		return
	}
	if converted == 1 && !result.HasFailures() {
		f := result.Files[0]
		data, err := os.ReadFile(f.Output)
		if err != nil {
			writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: err.Error()})
			return
		}
		sendFile(w, filepath.Base(f.Output), f.To.MIMEType(), data)
		return
	}

	var buf bytes.Buffer
	if err := batch.WriteZip(&buf, output); err != nil {
		writeError(w, &httpError{status: http.StatusInternalServerError, kind: "internal", msg: "Batch conversion failed: " + err.Error()})
		return
	}
	sendFile(w, "converted_files.zip", "application/zip", buf.Bytes())
}

// target resolves the format query parameter for a source format.
func target(r *http.Request, from format.Format) (format.Format, error) {
	q := r.URL.Query().Get("format")
	if q == "" {
		return docmorph.DefaultTarget(from), nil
	}
	to, err := format.Parse(q)
	if err != nil {
		return format.Unknown, fmt.Errorf("%w: %w", docmorph.ErrUnsupportedConversion, err)
	}
	if !docmorph.Supported(from, to) {
		return format.Unknown, fmt.Errorf("%w: %s to %s", docmorph.ErrUnsupportedConversion, from, to)
	}
	return to, nil
}

func firstError(result batch.Result) error {
	for _, f := range result.Files {
		if f.Err != nil {
			return f.Err
		}
	}
	return errors.New("no files were converted")
}

func sendFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// cleanName reduces an uploaded filename to a safe base name, or "" when
// nothing usable remains.
func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return ""
	}
	return name
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Serve serves h on ln until ctx is cancelled, then shuts down gracefully.
// At most maxConns connections are accepted at once when maxConns > 0.
func Serve(ctx context.Context, ln net.Listener, maxConns int, h http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logger.Info("listening", "addr", ln.Addr().String(), "max_conns", maxConns)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func ListenAndServe(ctx context.Context, addr string, maxConns int, h http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return Serve(ctx, ln, maxConns, h, logger)
}
