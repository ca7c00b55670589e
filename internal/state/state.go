package state

import (
	"github.com/lacertae/aster/internal/config"
	"github.com/lacertae/aster/internal/db"
)

type State struct {
	DB     db.DB
	Config config.Configuration
}
