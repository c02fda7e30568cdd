// Package voice serves the voice command endpoint: a transcript in, an applied action out.
package voice

import (
	"context"
	"net/http"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/store"
	"obra_tracker/pkg/core/utils"
	corevoice "obra_tracker/pkg/core/voice"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ActionParser interface {
	Parse(ctx context.Context, transcript string, project finance.Project) (*corevoice.Action, error)
}

type ActionExecutor interface {
	Execute(ctx context.Context, project *finance.Project, userID string, a *corevoice.Action) (*corevoice.Result, error)
}

// Request carries the text produced by the client's speech recognition.
type Request struct {
	Transcript string `json:"transcript" validate:"required,max=2000"`
	// DryRun returns the parsed action without applying it, for a confirmation step.
	DryRun bool `json:"dry_run,omitempty"`
}

type Handler struct {
	Projects store.ProjectStore
	Parser   ActionParser
	Executor ActionExecutor
}

func NewHandler(projects store.ProjectStore, parser ActionParser, executor ActionExecutor) *Handler {
	return &Handler{Projects: projects, Parser: parser, Executor: executor}
}

func (h *Handler) HandleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)
	project, err := store.LoadOwnedProject(ctx, h.Projects, mux.Vars(r)["id"], userID)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}

	var req Request
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}

	action, err := h.Parser.Parse(ctx, req.Transcript, *project)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	fields := logrus.Fields{"project_id": project.ID, "action": action.Action, "dry_run": req.DryRun}
	if req.DryRun {
		utils.Logger.WithFields(fields).Info("Voice command parsed")
		response.RespondWithJSON(w, http.StatusOK, corevoice.Result{Action: action})
		return
	}

	result, err := h.Executor.Execute(ctx, project, userID, action)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	utils.Logger.WithFields(fields).Info("Voice command applied")
	response.RespondWithJSON(w, http.StatusOK, result)
}
