package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"todoquest/internal/engine"
	"todoquest/internal/logging"
	"todoquest/internal/storage"
)

// Config for the HTTP API handler.
type Config struct {
	Service  *engine.Service
	BasePath string
	Logger   *slog.Logger
}

type apiErrorBody struct {
	Code    string `json:"code" example:"not_found"`
	Message string `json:"message" example:"task 7: not found"`
}

// apiError is the error envelope every failing request returns.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the todoquest API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("server: service is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			// Request schema failures are the caller's fault, same as engine validation.
			status = http.StatusBadRequest
			msg = joinErrors(msg, errs)
		}
		return newAPIError(status, "", msg)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	hcfg := huma.DefaultConfig("todoquest API", "1.0.0")
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	svc := cfg.Service
	registerHealth(group)
	registerProfile(group, svc)
	registerTasks(group, svc)
	registerHistory(group, svc)
	registerAchievements(group, svc)

	return router, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}

func joinErrors(msg string, errs []error) string {
	if len(errs) == 0 {
		return msg
	}
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return msg + ": " + strings.Join(parts, "; ")
}

func newAPIError(status int, code, message string) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ve engine.ValidationError
	switch {
	case errors.As(err, &ve):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, engine.ErrAlreadyCompleted):
		return newAPIError(http.StatusConflict, "already_completed", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

type profileOutput struct {
	Body ProfileResponse `json:"body"`
}

func registerProfile(api huma.API, svc *engine.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get the player profile",
	}, func(ctx context.Context, _ *struct{}) (*profileOutput, error) {
		p, err := svc.Profile(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &profileOutput{Body: profileResponse(*p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPatch,
		Path:        "/profile",
		Summary:     "Rename the player",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SetUsernameRequest `json:"body"`
	}) (*profileOutput, error) {
		p, err := svc.SetUsername(ctx, input.Body.Username)
		if err != nil {
			return nil, handleError(err)
		}
		return &profileOutput{Body: profileResponse(*p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Progress summary",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body StatsResponse `json:"body"`
	}, error) {
		st, err := svc.Stats(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StatsResponse `json:"body"`
		}{Body: statsResponse(st)}, nil
	})
}

type taskPath struct {
	ID int64 `path:"id"`
}

type taskOutput struct {
	Body TaskResponse `json:"body"`
}

func registerTasks(api huma.API, svc *engine.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		items, err := svc.ListTasks(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*taskOutput, error) {
		prio, err := engine.ParsePriority(input.Body.Priority)
		if err != nil {
			return nil, handleError(err)
		}
		t, err := svc.CreateTask(ctx, engine.CreateTaskInput{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Priority:    prio,
			Completed:   input.Body.Completed,
			Deadline:    input.Body.Deadline,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: taskResponse(*t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *taskPath) (*taskOutput, error) {
		t, err := svc.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: taskResponse(*t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Edit task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64             `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body UpdateResponse `json:"body"`
	}, error) {
		in := engine.UpdateTaskInput{
			Title:         input.Body.Title,
			Description:   input.Body.Description,
			Completed:     input.Body.Completed,
			Deadline:      input.Body.Deadline,
			ClearDeadline: input.Body.ClearDeadline,
		}
		if input.Body.Priority != nil {
			prio, err := engine.ParsePriority(*input.Body.Priority)
			if err != nil {
				return nil, handleError(err)
			}
			in.Priority = &prio
		}
		res, err := svc.UpdateTask(ctx, input.ID, in)
		if err != nil {
			return nil, handleError(err)
		}
		var out UpdateResponse
		if res.Task != nil {
			t := taskResponse(*res.Task)
			out.Task = &t
		}
		if res.Completion != nil {
			c := completeResponse(res.Completion)
			out.Completion = &c
		}
		return &struct {
			Body UpdateResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/complete",
		Summary:     "Complete task and award XP",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *taskPath) (*struct {
		Body CompleteResponse `json:"body"`
	}, error) {
		res, err := svc.CompleteTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CompleteResponse `json:"body"`
		}{Body: completeResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete task; open tasks cost XP",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *taskPath) (*struct {
		Body DeleteResponse `json:"body"`
	}, error) {
		res, err := svc.DeleteTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DeleteResponse `json:"body"`
		}{Body: deleteResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "fail-overdue",
		Method:      http.MethodPost,
		Path:        "/tasks/fail-overdue",
		Summary:     "Fail every open task past its deadline",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []FailedTaskResponse `json:"body"`
	}, error) {
		failed, err := svc.FailOverdue(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]FailedTaskResponse, 0, len(failed))
		for _, f := range failed {
			out = append(out, FailedTaskResponse{
				TaskID:  f.TaskID,
				Title:   f.Title,
				XPDelta: f.XPDelta,
				History: historyResponse(f.History),
			})
		}
		return &struct {
			Body []FailedTaskResponse `json:"body"`
		}{Body: out}, nil
	})
}

func registerHistory(api huma.API, svc *engine.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/history",
		Summary:     "List history, newest first",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Status string `query:"status" doc:"completed|failed|deleted"`
	}) (*struct {
		Body []HistoryResponse `json:"body"`
	}, error) {
		items, err := svc.ListHistory(ctx, engine.HistoryStatus(strings.ToLower(input.Status)))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []HistoryResponse `json:"body"`
		}{Body: mapHistory(items)}, nil
	})
}

func registerAchievements(api huma.API, svc *engine.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-achievements",
		Method:      http.MethodGet,
		Path:        "/achievements",
		Summary:     "List achievements",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []AchievementResponse `json:"body"`
	}, error) {
		items, err := svc.ListAchievements(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []AchievementResponse `json:"body"`
		}{Body: mapAchievements(items)}, nil
	})
}
