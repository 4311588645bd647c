package app

import (
	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-studio/cache"
	"github.com/mbolis/survey-studio/config"
	"github.com/mbolis/survey-studio/database"
)

type App struct {
	*database.Store
	*oauth.BearerServer
	config.Config

	Reports cache.ReportCache
}
