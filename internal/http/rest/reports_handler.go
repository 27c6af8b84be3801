package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckersblacklist/blacklist_api/internal/engine"
	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util"
	"github.com/truckersblacklist/blacklist_api/util/tracing"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

const maxSubmissionBytes = 32 << 20

func (api *API) ReportRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodGet, "/", Handler(api.ListReports))
		r.Method(http.MethodPost, "/", Handler(api.SubmitReport))
		r.Method(http.MethodPost, "/{reportID}/votes", Handler(api.VoteOnReport))
	})

	return mux
}

// ListReports serves the materialized view. The sort parameter re-orders
// the held snapshot per request; it never triggers a new subscription.
func (api *API) ListReports(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	reports := api.ReportsView.Reports()

	switch r.URL.Query().Get("sort") {
	case "name":
		engine.SortReports(reports, engine.SortByName)
	case "recency", "":
		engine.SortReports(reports, engine.SortByRecency)
	}

	return &ServerResponse{
		Message:    "Reports fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       reports,
	}
}

// SubmitReport accepts a multipart form: the report text fields plus one or
// more files under the "media" key.
func (api *API) SubmitReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		return respondWithError(err, "unable to parse multipart form", values.BadRequestBody, &tc)
	}

	input := engine.SubmitReportInput{
		CompanyName:      r.FormValue("company_name"),
		IssueDescription: r.FormValue("issue_description"),
		ReporterName:     r.FormValue("reporter_name"),
		ReporterContact:  r.FormValue("reporter_contact"),
	}

	var openFiles []interface{ Close() error }
	defer func() {
		for _, f := range openFiles {
			_ = f.Close()
		}
	}()
	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["media"] {
			file, openErr := hdr.Open()
			if openErr != nil {
				return respondWithError(openErr, "unable to read attachment", values.BadRequestBody, &tc)
			}
			openFiles = append(openFiles, file)
			input.Attachments = append(input.Attachments, engine.Attachment{
				Name: hdr.Filename,
				Data: file,
			})
		}
	}

	sess := engine.NewSession(userID)
	reportID, err := api.Engine.SubmitReport(r.Context(), sess, input)
	if err != nil {
		var partial *engine.PartialSubmissionError
		if errors.As(err, &partial) {
			// The document persists without its attachments; tell the
			// caller which one so they can warn the user or retry the
			// attachment step.
			return &ServerResponse{
				Message:    "Report saved, but one or more attachments failed to upload",
				Status:     values.Failed,
				StatusCode: http.StatusInternalServerError,
				Data:       map[string]string{"report_id": partial.ReportID},
			}
		}
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Report submitted successfully!",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       map[string]string{"report_id": reportID},
	}
}

// VoteOnReport toggles the caller's vote using the report as currently
// materialized, which is exactly the last-observed-snapshot semantics the
// vote state machine documents.
func (api *API) VoteOnReport(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	reportID := chi.URLParam(r, "reportID")

	var req model.VoteRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "vote_type must be UPVOTE or DOWNVOTE", values.BadRequestBody, &tc)
	}

	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return respondWithError(err, "unable to get user ID from context", values.NotAuthorised, &tc)
	}

	report, ok := api.findReport(reportID)
	if !ok {
		return respondWithError(errors.New("report not in view"), "report not found", values.NotFound, &tc)
	}

	sess := engine.NewSession(userID)
	if err := api.Engine.ToggleVote(r.Context(), sess, report, engine.VoteKind(req.VoteType)); err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Vote recorded",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

func (api *API) findReport(id string) (model.Report, bool) {
	for _, report := range api.ReportsView.Reports() {
		if report.ID == id {
			return report, true
		}
	}
	return model.Report{}, false
}
