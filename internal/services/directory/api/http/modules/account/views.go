package account

import (
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/api/http/views"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

type me struct {
	views.Profile
	Admin bool `json:"admin"`
}

func meView(profile storage.Profile, actor access.Actor) me {
	return me{Profile: views.NewProfile(profile), Admin: actor.Admin}
}
