package cmd

import (
	"crypto/hmac"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	domainreview "github.com/ajschmidt2/bluebeam-consolidator/internal/domain/review"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/usecase/review"
)

// maxUploadBytes caps a single CSV upload.
const maxUploadBytes = 32 << 20

type apiHandler struct {
	svc *review.Service
}

type apiErrorResponse struct {
	Error string `json:"error"`
}

func newAPIHandler(svc *review.Service, token string) http.Handler {
	h := &apiHandler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if strings.TrimSpace(token) != "" {
		r.Use(bearerAuth(token))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", h.listProjects)
		r.Post("/projects", h.createProject)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/milestones", h.listMilestones)
			r.Post("/milestones", h.createMilestone)
			r.Get("/batches", h.listBatches)
			r.Post("/imports", h.importCSV)
			r.Get("/comments", h.listComments)
			r.Post("/triage", h.triage)
			r.Get("/package", h.buildPackage)
		})
		r.Patch("/comments/{commentID}", h.updateComment)
	})
	return r
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	expected := strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) ||
				!hmac.Equal([]byte(strings.TrimSpace(header[len(prefix):])), []byte(expected)) {
				writeAPIError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *apiHandler) listProjects(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("all") == "true"
	projects, err := h.svc.ListProjects(r.Context(), includeArchived)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, projects)
}

func (h *apiHandler) createProject(w http.ResponseWriter, r *http.Request) {
	var input review.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	project, err := h.svc.CreateProject(r.Context(), input)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, project)
}

func (h *apiHandler) listMilestones(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	milestones, err := h.svc.ListMilestones(r.Context(), projectID)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, milestones)
}

func (h *apiHandler) createMilestone(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	var input review.CreateMilestoneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	input.ProjectID = projectID
	milestone, err := h.svc.CreateMilestone(r.Context(), input)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, milestone)
}

func (h *apiHandler) listBatches(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	batches, err := h.svc.ListImportBatches(r.Context(), projectID)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, batches)
}

func (h *apiHandler) importCSV(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	input := review.ImportCSVInput{
		ProjectID:      projectID,
		SourceFilename: header.Filename,
		Discipline:     r.FormValue("discipline"),
		Raw:            raw,
	}
	if v := r.FormValue("milestone_id"); v != "" {
		milestoneID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid milestone_id")
			return
		}
		input.MilestoneID = milestoneID
	}
	if v := r.FormValue("mapping"); v != "" {
		var mapping domainreview.Mapping
		if err := json.Unmarshal([]byte(v), &mapping); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid mapping json")
			return
		}
		input.MappingOverride = mapping
	}

	result, err := h.svc.ImportCSV(r.Context(), input)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusCreated, result)
}

func (h *apiHandler) listComments(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := ports.CommentFilter{
		ProjectID:  projectID,
		Discipline: query.Get("discipline"),
		Status:     query.Get("status"),
		Search:     query.Get("search"),
	}
	if v := query.Get("milestone_id"); v != "" {
		milestoneID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid milestone_id")
			return
		}
		filter.MilestoneID = &milestoneID
	}
	if v := query.Get("tracked"); v != "" {
		tracked := v == "true"
		filter.Tracked = &tracked
	}

	comments, err := h.svc.ListComments(r.Context(), filter)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, comments)
}

func (h *apiHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	var update ports.CommentUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	comment, err := h.svc.UpdateComment(r.Context(), commentID, update)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, comment)
}

func (h *apiHandler) triage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	input := review.TriageInput{ProjectID: projectID, OnlyUntagged: true}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	input.ProjectID = projectID

	summary, err := h.svc.TriageComments(r.Context(), input)
	if err != nil {
		if errors.Is(err, ports.ErrClassifierUnavailable) {
			writeAPIError(w, http.StatusServiceUnavailable, "triage disabled: no API key configured")
			return
		}
		writeAPIFailure(w, err)
		return
	}
	writeAPIJSON(w, http.StatusOK, summary)
}

func (h *apiHandler) buildPackage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	query := r.URL.Query()
	input := review.PackageInput{
		ProjectID:   projectID,
		Discipline:  query.Get("discipline"),
		Status:      query.Get("status"),
		TrackedOnly: query.Get("tracked_only") != "false",
		Header:      query.Get("header"),
	}
	if v := query.Get("milestone_id"); v != "" {
		milestoneID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid milestone_id")
			return
		}
		input.MilestoneID = milestoneID
	}

	if query.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="consultant_package.csv"`)
		if err := h.svc.ExportPackageCSV(r.Context(), input, w); err != nil {
			writeAPIFailure(w, err)
		}
		return
	}

	text, err := h.svc.BuildPackage(r.Context(), input)
	if err != nil {
		writeAPIFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		writeAPIError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func writeAPIFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrProjectNotFound),
		errors.Is(err, ports.ErrMilestoneNotFound),
		errors.Is(err, ports.ErrCommentNotFound):
		writeAPIError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domainreview.ErrMalformedInput):
		writeAPIError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeAPIJSON(w, status, apiErrorResponse{Error: message})
}

func writeAPIJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
