package cmd

import (
	"log/slog"

	"cinema-ticket/internal/store"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
)

// setupRecordHooks keeps user roles under admin control. Sign-ups always start as
// customers and only superusers may change a role through the records API.
func setupRecordHooks(app core.App) {
	app.OnRecordCreateRequest(store.UsersCollection).BindFunc(func(e *core.RecordRequestEvent) error {
		if !e.HasSuperuserAuth() {
			e.Record.Set("role", string(models.RoleCustomer))
		}
		return e.Next()
	})

	app.OnRecordUpdateRequest(store.UsersCollection).BindFunc(func(e *core.RecordRequestEvent) error {
		if e.HasSuperuserAuth() {
			return e.Next()
		}
		previous := e.Record.Original().GetString("role")
		if requested := e.Record.GetString("role"); requested != previous {
			slog.Warn("Ignoring role change from non-superuser",
				"user_id", e.Record.Id,
				"requested", requested,
				"hook", "OnRecordUpdateRequest",
			)
			e.Record.Set("role", previous)
		}
		return e.Next()
	})
}
