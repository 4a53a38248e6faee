package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"taskmanager/app/auth"
	"taskmanager/app/controllers"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Tasks       *controllers.TaskController
	Suggestions *controllers.SuggestionController
	Auth        *controllers.AuthController
}

// RegisterRoutes sets up all routes for the application. Everything except
// the health check requires a bearer session.
func RegisterRoutes(router *mux.Router, c Controllers, authn *auth.Authenticator) {
	router.HandleFunc("/healthz", controllers.Health).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(authn.Middleware)

	api.HandleFunc("/auth/session", c.Auth.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/auth/signout", c.Auth.SignOut).Methods(http.MethodPost)

	api.HandleFunc("/functions/v1/generate-subtasks", c.Suggestions.GenerateSubtasks).Methods(http.MethodPost)

	api.HandleFunc("/tasks", c.Tasks.GetTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", c.Tasks.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.GetTaskByID).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskID}", c.Tasks.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskID}/subtasks", c.Tasks.GetTaskSubtasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskID}/subtasks", c.Tasks.CreateSubtask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskID}/suggestions/accept", c.Tasks.AcceptSuggestion).Methods(http.MethodPost)

	api.HandleFunc("/subtasks", c.Tasks.GetSubtasks).Methods(http.MethodGet)
	api.HandleFunc("/subtasks/{subtaskID}", c.Tasks.UpdateSubtask).Methods(http.MethodPut)
	api.HandleFunc("/subtasks/{subtaskID}", c.Tasks.DeleteSubtask).Methods(http.MethodDelete)
}

// NewRouter builds the complete HTTP handler.
func NewRouter(c Controllers, authn *auth.Authenticator, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(Recover(logger), RequestLogger(logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	RegisterRoutes(router, c, authn)
	return CORS(router)
}
