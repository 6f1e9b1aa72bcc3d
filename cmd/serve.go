package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocontext/internal/neighborhood"
	"github.com/sells-group/geocontext/internal/table"
)

var servePort int

type contextRequest struct {
	Points []struct {
		ID    string  `json:"id"`
		North float64 `json:"north"`
		East  float64 `json:"east"`
	} `json:"points"`
	Locations struct {
		North   []float64            `json:"north"`
		East    []float64            `json:"east"`
		Columns map[string][]float64 `json:"columns"`
	} `json:"locations"`
	Spec        neighborhood.Spec `json:"spec"`
	Concurrency int               `json:"concurrency"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for context computations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Set up routes
		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		mux.HandleFunc("POST /context/compute", handleCompute)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleCompute(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Points) == 0 {
		http.Error(w, `{"error":"points is required"}`, http.StatusBadRequest)
		return
	}

	ref, err := neighborhood.NewReference(req.Locations.North, req.Locations.East)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	for name, vals := range req.Locations.Columns {
		if err := ref.AddColumn(name, vals); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = cfg.Compute.Concurrency
	}
	eng, err := neighborhood.NewEngine(ref, &req.Spec, concurrency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	points := make([]neighborhood.Point, len(req.Points))
	for i, p := range req.Points {
		id := p.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		points[i] = neighborhood.Point{ID: id, North: p.North, East: p.East}
	}

	builder, err := eng.Run(r.Context(), points)
	if err != nil {
		if eris.Is(err, neighborhood.ErrInsufficientPopulation) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		zap.L().Error("context compute failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Cells go out as strings so NaN survives JSON encoding.
	out := table.New([]string{"point"})
	for _, p := range points {
		if err := out.AppendRow([]string{p.ID}); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	if err := builder.AppendTo(out); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	rows := make([][]string, out.NumRows())
	for i := range rows {
		rows[i] = out.Row(i)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"columns": out.Columns(),
		"rows":    rows,
	})
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
