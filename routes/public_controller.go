package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/httpx"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/model"
	"github.com/mbolis/survey-studio/validation"
)

// publicSurvey is what respondents see: no bookkeeping fields.
type publicSurvey struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Logo        string             `json:"logo,omitempty"`
	Fields      []model.Field      `json:"fields,omitempty"`
	Sections    []model.Section    `json:"sections,omitempty"`
	SuccessPage *model.SuccessPage `json:"successPage,omitempty"`
	Closed      bool               `json:"closed,omitempty"`
}

type submission struct {
	Answers model.Answers `json:"answers"`
}

func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		survey, err := app.GetSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		if !survey.IsActive {
			log.Debugf("get_survey: %s is closed", surveyId)
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, publicSurvey{
				ID:     survey.ID,
				Title:  survey.Title,
				Logo:   survey.Logo,
				Closed: true,
			})
			return
		}

		render.JSON(w, r, publicSurvey{
			ID:          survey.ID,
			Title:       survey.Title,
			Description: survey.Description,
			Logo:        survey.Logo,
			Fields:      survey.Fields,
			Sections:    model.Partition(survey.Fields),
			SuccessPage: survey.SuccessPage,
		})
	}
}

// PublicValidate checks answers without storing them.
func PublicValidate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		sub := submission{}
		if err := render.DecodeJSON(r.Body, &sub); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.GetSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}

		errs := validation.Survey(survey.Fields, sub.Answers)
		render.JSON(w, r, map[string]any{
			"valid":  len(errs) == 0,
			"errors": errs,
		})
	}
}

type gateRequest struct {
	acquire bool
	key     string
	granted chan<- struct{}
}

// submissionGate serializes identical submissions: the first holds the key
// and later ones queue behind it, so they reach the store after it and are
// recognized there as duplicates.
type submissionGate chan<- gateRequest

func newSubmissionGate() submissionGate {
	requests := make(chan gateRequest)
	go func() {
		waiting := make(map[string][]chan<- struct{})

		for req := range requests {
			queue, held := waiting[req.key]
			switch {
			case req.acquire && !held:
				waiting[req.key] = nil
				req.granted <- struct{}{}
			case req.acquire:
				waiting[req.key] = append(queue, req.granted)
			case len(queue) == 0:
				delete(waiting, req.key)
			default:
				queue[0] <- struct{}{}
				waiting[req.key] = queue[1:]
			}
		}
	}()
	return requests
}

// acquire waits for the key. When ctx ends first the key is released on
// the caller's behalf as soon as it is granted.
func (g submissionGate) acquire(ctx context.Context, key string) error {
	granted := make(chan struct{}, 1)
	g <- gateRequest{true, key, granted}
	select {
	case <-granted:
		return nil
	case <-ctx.Done():
		go func() {
			<-granted
			g.release(key)
		}()
		return ctx.Err()
	}
}

func (g submissionGate) release(key string) {
	g <- gateRequest{false, key, nil}
}

func PublicSubmitSurvey(app app.App) http.HandlerFunc {
	gate := newSubmissionGate()

	return func(w http.ResponseWriter, r *http.Request) {
		surveyId := chi.URLParam(r, "id")

		sub := submission{}
		if err := render.DecodeJSON(r.Body, &sub); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		survey, err := app.GetSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogStoreError(w, "db.get_survey", surveyId, err)
			return
		}
		if !survey.IsActive {
			httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "submit.closed", "survey %s is not accepting responses", surveyId)
			return
		}

		if errs := validation.Survey(survey.Fields, sub.Answers); len(errs) > 0 {
			log.Debugf("submit.invalid: %s %v", surveyId, errs)
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"errors": errs,
			})
			return
		}

		response := model.Response{
			SurveyID:  survey.ID,
			Answers:   knownAnswers(survey, sub.Answers),
			UserAgent: r.UserAgent(),
			IPAddress: httpx.ClientIP(r),
		}

		fingerprint, err := response.Answers.Canonical()
		if err != nil {
			httpx.LogInternalError(w, "submit.fingerprint", err)
			return
		}
		key := survey.ID + "|" + response.IPAddress + "|" + string(fingerprint)
		if err := gate.acquire(r.Context(), key); err != nil {
			httpx.LogStatusMsg(w, http.StatusServiceUnavailable, log.DebugLevel, "submit.gate", "%s", err)
			return
		}
		defer gate.release(key)

		stored, err := app.SaveResponse(r.Context(), &response, app.DuplicateWindow)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		if !stored {
			render.JSON(w, r, map[string]any{
				"id":          response.ID,
				"duplicate":   true,
				"successPage": survey.SuccessPage,
			})
			return
		}

		invalidateReport(r.Context(), app, survey.ID)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":          response.ID,
			"successPage": survey.SuccessPage,
		})
	}
}

// knownAnswers drops answers to fields the survey does not have.
func knownAnswers(survey model.Survey, answers model.Answers) model.Answers {
	kept := make(model.Answers, len(answers))
	for id, a := range answers {
		if f, ok := survey.Field(id); ok && !f.IsDivider() {
			kept[id] = a
		}
	}
	return kept
}

func invalidateReport(ctx context.Context, app app.App, surveyId string) {
	if err := app.Reports.Invalidate(ctx, surveyId); err != nil {
		log.Warnf("cache.invalidate: %s: %s", surveyId, err)
	}
}
