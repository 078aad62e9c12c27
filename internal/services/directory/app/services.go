package app

import (
	"github.com/bonitaforward/bonita-forward/internal/services/directory/accounts"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/booking"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/catalog"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/content"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/dashboard"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/intake"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/media"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/notifications"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// Services holds every directory domain service over one store.
type Services struct {
	Catalog       *catalog.Service
	Bookings      *booking.Service
	Intake        *intake.Service
	Accounts      *accounts.Service
	Content       *content.Service
	Notifications *notifications.Service
	Media         *media.Service
	Dashboard     *dashboard.Service
}

// NewServices builds the domain services. A nil objects store leaves image
// routes answering unavailable.
func NewServices(store storage.Store, objects media.ObjectStore, accountCfg accounts.Config) Services {
	svc := Services{
		Catalog:       catalog.NewService(store),
		Bookings:      booking.NewService(store),
		Intake:        intake.NewService(store),
		Accounts:      accounts.NewService(store, accountCfg),
		Content:       content.NewService(store),
		Notifications: notifications.NewService(store),
	}
	svc.Media = media.NewService(svc.Catalog, objects)
	svc.Dashboard = dashboard.NewService(dashboard.Deps{
		Catalog:       svc.Catalog,
		Bookings:      svc.Bookings,
		Intake:        svc.Intake,
		Notifications: svc.Notifications,
		Accounts:      svc.Accounts,
		Events:        svc.Content,
	})
	return svc
}
