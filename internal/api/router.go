package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/TWRT/task-analyzer/internal/analyzer"
	"github.com/TWRT/task-analyzer/internal/api/handlers"
	"github.com/TWRT/task-analyzer/internal/logging"
	"github.com/TWRT/task-analyzer/internal/repository"
)

func SetupRouter(db *sql.DB, weights *analyzer.WeightStore, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NopLogger()
	}
	mux := http.NewServeMux()

	runRepo := repository.NewRunRepository(db)
	taskAnalyzer := analyzer.New(weights)

	analysisHandler := handlers.NewAnalysisHandler(taskAnalyzer, runRepo, logger)
	runHandler := handlers.NewRunHandler(runRepo)

	mux.HandleFunc("POST /api/tasks/analyze/", analysisHandler.AnalyzeTasks)
	mux.HandleFunc("GET /api/tasks/suggest/", analysisHandler.SuggestTasks)

	mux.HandleFunc("GET /api/runs/{id}", runHandler.GetRun)
	mux.HandleFunc("GET /api/runs", runHandler.ListRuns)

	return withRequestID(mux, logger.WithComponent("http"))
}

// withRequestID makes sure every request carries an X-Request-Id, echoes it
// back and logs the request once it has been served.
func withRequestID(next http.Handler, logger *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(handlers.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(handlers.RequestIDHeader, id)
		}
		w.Header().Set(handlers.RequestIDHeader, id)

		started := time.Now()
		next.ServeHTTP(w, r)
		logger.WithRequest(id).Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}
