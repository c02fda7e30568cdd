package projects

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"
)

func (h *Handler) HandleListDiary(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	entries, err := h.Stores.Records.ListDiary(r.Context(), p.ID)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	for i := range entries {
		entries[i].HTML = renderDiary(entries[i].Body)
	}
	response.RespondWithJSON(w, http.StatusOK, entries)
}

// renderDiary turns a Markdown body into HTML; a body that fails to render gets none.
func renderDiary(body string) string {
	html, err := utils.RenderMarkdown(body)
	if err != nil {
		utils.Logger.WithError(err).Warn("Failed to render diary entry")
		return ""
	}
	return html
}

func (h *Handler) HandleCreateDiary(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req DiaryRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	date := h.today()
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	entry := &models.DiaryEntry{
		ProjectID: p.ID,
		UserID:    userID,
		Date:      date.Time,
		Body:      strings.TrimSpace(req.Body),
	}
	if err := h.Stores.Records.CreateDiaryEntry(r.Context(), entry); err != nil {
		response.HandleAppError(w, err)
		return
	}
	entry.HTML = renderDiary(entry.Body)
	h.audit(r.Context(), p.ID, userID, models.AuditDiaryCreated,
		fmt.Sprintf("Diary %s: %s", date, utils.Excerpt(entry.Body, 80)))
	response.RespondWithJSON(w, http.StatusCreated, entry)
}

func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	docs, err := h.Stores.Records.ListDocuments(r.Context(), p.ID)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, docs)
}

func (h *Handler) HandleCreateDocument(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req DocumentRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	doc := &models.Document{
		ProjectID:   p.ID,
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		StoragePath: req.StoragePath,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}
	if err := h.Stores.Records.CreateDocument(r.Context(), doc); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditDocumentAdded, fmt.Sprintf("Document %q added", doc.Name))
	response.RespondWithJSON(w, http.StatusCreated, doc)
}

// HandleListAudit returns the trail newest first; ?limit caps it (default 100, max 1000).
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			response.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "limit must be between 1 and 1000", nil, err)
			return
		}
		limit = n
	}
	entries, err := h.Stores.Records.ListAudit(r.Context(), p.ID, limit)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, entries)
}
