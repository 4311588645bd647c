package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/survey-studio/app"
	"github.com/mbolis/survey-studio/log"
	"github.com/mbolis/survey-studio/routes/middlewares"
)

const (
	surveyPath   = `/surveys/{id:^[a-z0-9]+(-[a-z0-9]+)*$}`
	responsePath = surveyPath + `/responses/{rid:^[0-9a-fA-F-]+$}`
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin", app.PrivateDir))
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get(surveyPath, PublicGetSurvey(app))
	api.Post(surveyPath+"/validate", PublicValidate(app))
	api.Post(surveyPath+"/responses", PublicSubmitSurvey(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// CRUD survey
		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(surveyPath, GetSurveyById(app))
		r.Put(surveyPath, UpdateSurvey(app))
		r.Delete(surveyPath, DeleteSurvey(app))
		r.Put(surveyPath+"/active", SetSurveyActive(app))

		r.Get(surveyPath+"/responses", GetSurveyResponses(app))
		r.Delete(responsePath, DeleteSurveyResponse(app))

		r.Get(surveyPath+"/analytics", GetSurveyAnalytics(app))
		r.Get(surveyPath+"/export", ExportSurvey(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}

func servePrivateFiles(path, dir string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir(dir)))
}
