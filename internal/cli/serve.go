package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chaosgame/pkg/buildinfo"
	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/observability"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

const (
	// maxPreviewSide bounds preview frame dimensions.
	maxPreviewSide = 2048

	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		flags cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve single-frame previews over HTTP",
		Long: `Serve renders individual frames on demand. Frame k shows the polygon after
k iterations, identical to frame_k of a render with the same seed and size.

Endpoints:
  GET /healthz
  GET /api/v1/polygons
  GET /api/v1/rate/{vertices}
  GET /api/v1/frames/{vertices}/{frame}.png?seed=&width=&height=
  GET /api/v1/stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, flags)
			if err != nil {
				return err
			}
			defer runner.Close()

			counters := new(observability.Counters)
			observability.SetPipelineHooks(counters)
			observability.SetCacheHooks(counters)
			observability.SetHTTPHooks(counters)
			defer observability.Reset()

			return serve(ctx, addr, newServer(runner, counters, c.Logger), c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	flags.register(cmd)
	return cmd
}

// serve runs the HTTP server until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// server holds the handlers' dependencies.
type server struct {
	runner   *pipeline.Runner
	counters *observability.Counters
	logger   *log.Logger
}

// newServer builds the preview API router.
func newServer(runner *pipeline.Runner, counters *observability.Counters, logger *log.Logger) http.Handler {
	s := &server{runner: runner, counters: counters, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string `json:"status"`
			buildinfo.Info
		}{"ok", buildinfo.Get()})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/polygons", s.handlePolygons)
		r.Get("/rate/{vertices}", s.handleRate)
		r.Get("/frames/{vertices}/{frame}", s.handleFrame)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// observe reports each request to the HTTP hooks and logs it.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}

func (s *server) handlePolygons(w http.ResponseWriter, r *http.Request) {
	var infos []polygonInfo
	for _, n := range geometry.Named() {
		info, err := describePolygon(n)
		if err != nil {
			writeError(w, err)
			return
		}
		infos = append(infos, info)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *server) handleRate(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(chi.URLParam(r, "vertices"), "vertices")
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := describePolygon(n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *server) handleFrame(w http.ResponseWriter, r *http.Request) {
	opts, index, err := previewRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, cached, err := s.runner.Preview(r.Context(), opts, index)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

// previewRequest parses the frame route and its query into render options.
func previewRequest(r *http.Request) (pipeline.Options, int, error) {
	opts := pipeline.DefaultOptions()

	n, err := intParam(chi.URLParam(r, "vertices"), "vertices")
	if err != nil {
		return opts, 0, err
	}
	opts.Vertices = n

	frame, ok := strings.CutSuffix(chi.URLParam(r, "frame"), ".png")
	if !ok {
		return opts, 0, errors.Invalid("only .png frames are served")
	}
	index, err := intParam(frame, "frame")
	if err != nil {
		return opts, 0, err
	}

	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, 0, errors.Invalid("seed must be an unsigned integer, got %q", v)
		}
		opts.Seed = seed
	}
	for _, dim := range []struct {
		key string
		dst *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		v := q.Get(dim.key)
		if v == "" {
			continue
		}
		px, err := intParam(v, dim.key)
		if err != nil {
			return opts, 0, err
		}
		if px < 1 || px > maxPreviewSide {
			return opts, 0, errors.Invalid("%s must be between 1 and %d, got %d", dim.key, maxPreviewSide, px)
		}
		*dim.dst = px
	}
	return opts, index, nil
}

func intParam(v, name string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Invalid("%s must be an integer, got %q", name, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps configuration errors to 400 and everything else to 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeInvalidConfiguration:
		status = http.StatusBadRequest
	case "":
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"code":  string(code),
		"error": errors.UserMessage(err),
	})
}
