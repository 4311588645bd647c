package routes

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-studio/analytics"
	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/export"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
)

// surveyRequest defaults isActive to true when it is omitted.
type surveyRequest struct {
	model.Survey
	IsActive *bool `json:"isActive"`
}

func (req surveyRequest) survey() model.Survey {
	s := req.Survey
	s.IsActive = req.IsActive == nil || *req.IsActive
	return s
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := surveyRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey := req.survey()
		survey.Normalize()
		if err := survey.Check(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_survey.check", "%s", err)
			return
		}

		if err := app.CreateSurvey(r.Context(), &survey); err != nil {
			httpx.LogStoreError(w, "db.insert_survey", survey.ID, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": survey.ID,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		survey, err := app.GetSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		render.JSON(w, r, survey)
	}
}

// UpdateSurvey replaces a survey. A non-zero version must match the stored
// one, or the update is rejected with 409.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		req := surveyRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey := req.survey()
		survey.ID = surveyId
		survey.Normalize()
		if err := survey.Check(); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "update_survey.check", "%s", err)
			return
		}

		if err := app.UpdateSurvey(r.Context(), &survey); err != nil {
			httpx.LogStoreError(w, "db.update_survey", surveyId, err)
			return
		}
		invalidateReport(r.Context(), app, surveyId)

		render.JSON(w, r, survey)
	}
}

func SetSurveyActive(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		var body struct {
			IsActive *bool `json:"isActive"`
		}
		if err := render.DecodeJSON(r.Body, &body); err != nil || body.IsActive == nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err := app.SetSurveyActive(r.Context(), surveyId, *body.IsActive); err != nil {
			httpx.LogStoreError(w, "db.set_survey_active", surveyId, err)
			return
		}
		invalidateReport(r.Context(), app, surveyId)

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		if err := app.DeleteSurvey(r.Context(), surveyId); err != nil {
			httpx.LogStoreError(w, "db.delete_survey", surveyId, err)
			return
		}
		invalidateReport(r.Context(), app, surveyId)

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		if _, err := app.GetSurvey(r.Context(), surveyId); err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		responses, err := app.ListResponses(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func DeleteSurveyResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")
		responseId := chi.URLParam(r, "rid")

		if err := app.DeleteResponse(r.Context(), surveyId, responseId); err != nil {
			httpx.LogStoreError(w, "db.delete_response", responseId, err)
			return
		}
		invalidateReport(r.Context(), app, surveyId)

		w.WriteHeader(http.StatusNoContent)
	}
}

// GetSurveyAnalytics serves the report from the cache, computing and storing
// it on a miss. Cache failures are logged and the report is computed anyway.
// The report is stored under the generation seen before loading, so an
// invalidation racing with the computation wins.
func GetSurveyAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		cached, gen, err := app.Reports.Get(r.Context(), surveyId)
		cacheable := err == nil
		if err != nil {
			log.Warnf("cache.get_report: %s: %s", surveyId, err)
		}
		if cached != nil {
			render.JSON(w, r, cached)
			return
		}

		survey, responses, err := loadResults(r, app, surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_results", surveyId, err)
			return
		}

		report := analytics.Analyze(survey.Fields, responses)
		if cacheable {
			if err := app.Reports.Set(r.Context(), surveyId, gen, report); err != nil {
				log.Warnf("cache.set_report: %s: %s", surveyId, err)
			}
		}

		render.JSON(w, r, report)
	}
}

func ExportSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "json" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "export.format", "unsupported format %q", format)
			return
		}

		survey, responses, err := loadResults(r, app, surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_results", surveyId, err)
			return
		}

		now := app.Now()
		buf := bytes.Buffer{}
		contentType := "text/csv; charset=utf-8"
		switch format {
		case "csv":
			err = export.CSV(&buf, survey, responses)
		case "json":
			contentType = "application/json"
			err = export.JSON(&buf, export.Document{
				ExportedAt: now,
				Survey:     survey,
				Responses:  responses,
				Report:     analytics.Analyze(survey.Fields, responses),
			})
		}
		if err != nil {
			httpx.LogInternalError(w, "export."+format, err)
			return
		}

		w.Header().Set("content-type", contentType)
		w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(survey, format, now)))
		if _, err := w.Write(buf.Bytes()); err != nil {
			log.Warnf("export.write: %s", err)
		}
	}
}

func loadResults(r *http.Request, app app.App, surveyId string) (model.Survey, []model.Response, error) {
	survey, err := app.GetSurvey(r.Context(), surveyId)
	if err != nil {
		return survey, nil, err
	}
	responses, err := app.ListResponses(r.Context(), surveyId)
	if err != nil {
		return survey, nil, fmt.Errorf("list responses: %w", err)
	}
	return survey, responses, nil
}
