package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clauselens/workbench-cli/internal/faults"
	"github.com/clauselens/workbench-cli/internal/workspace"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace as a JSON API for a UI front-end",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ctrl, journal := newController(ctx)
		if journal != nil {
			defer journal.Close()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctrl, cfg.Server.AllowedOrigins),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the workspace API. One workspace is open at a time,
// matching the single-document UI the API backs.
func newRouter(ctrl *workspace.Controller, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/workspace", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, ctrl.Snapshot())
		})

		r.Post("/open", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				DocumentID string `json:"document_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.DocumentID == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id is required"})
				return
			}
			vm, err := ctrl.Open(req.Context(), body.DocumentID)
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, vm)
		})

		r.Post("/close", func(w http.ResponseWriter, req *http.Request) {
			ctrl.Close(req.Context())
			writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
		})

		r.Post("/extract", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Force bool `json:"force"`
			}
			_ = json.NewDecoder(req.Body).Decode(&body)

			var vm workspace.ViewModel
			var err error
			if body.Force {
				vm, err = ctrl.Reextract(req.Context())
			} else {
				vm, err = ctrl.Extract(req.Context())
			}
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, vm)
		})

		r.Post("/select", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				ClauseNumber int `json:"clause_number"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clause_number is required"})
				return
			}
			clause, err := ctrl.Select(req.Context(), body.ClauseNumber)
			if err != nil {
				writeFault(w, err)
				return
			}
			// Similarity and save-status land asynchronously; the client
			// polls GET /workspace for them.
			writeJSON(w, http.StatusOK, clause)
		})

		r.Post("/compare", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				FileID string `json:"file_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.FileID == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_id is required"})
				return
			}
			if _, err := ctrl.SetComparisonTarget(body.FileID); err != nil {
				writeFault(w, err)
				return
			}
			view, err := ctrl.Compare(req.Context())
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, view)
		})

		r.Post("/tags", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Tag string `json:"tag"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Tag == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tag is required"})
				return
			}
			tags, err := ctrl.AddTag(req.Context(), body.Tag)
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
		})

		r.Delete("/tags", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Tag       string `json:"tag"`
				Confirmed bool   `json:"confirmed"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Tag == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "tag is required"})
				return
			}
			if !body.Confirmed {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "tag removal requires confirmed=true"})
				return
			}
			tags, err := ctrl.RemoveTag(req.Context(), workspace.ConfirmTagRemoval(body.Tag))
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
		})

		r.Post("/save", func(w http.ResponseWriter, req *http.Request) {
			result, err := ctrl.SaveClause(req.Context())
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/risk", func(w http.ResponseWriter, req *http.Request) {
			assessment, err := ctrl.LoadRisk(req.Context())
			if err != nil {
				writeFault(w, err)
				return
			}
			writeJSON(w, http.StatusOK, assessment)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFault maps the error taxonomy onto HTTP statuses: NotFound is an
// empty state, Rejected is user-actionable, AuthRequired triggers re-auth,
// and everything else is a gateway failure carrying the remote message
// verbatim.
func writeFault(w http.ResponseWriter, err error) {
	switch {
	case faults.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": faults.RemoteMessage(err)})
	case faults.IsRejected(err):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": faults.RemoteMessage(err)})
	case faults.IsAuthRequired(err):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": faults.RemoteMessage(err)})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": faults.RemoteMessage(err)})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
