package app

import (
	"database/sql"

	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/config"
)

type App struct {
	*sql.DB
	*auth.Tokens
	config.Config
}
