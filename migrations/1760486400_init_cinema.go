package migrations

import (
	"fmt"

	"cinema-ticket/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId(store.UsersCollection)
		if err != nil {
			return err
		}
		if users.Fields.GetByName("role") == nil {
			users.Fields.Add(store.RoleField())
			if err := app.Save(users); err != nil {
				return fmt.Errorf("add role to users: %w", err)
			}
		}

		for _, c := range store.Schema() {
			if err := app.Save(c); err != nil {
				return fmt.Errorf("create %s: %w", c.Name, err)
			}
		}
		return nil
	}, func(app core.App) error {
		collections := store.Schema()
		for i := len(collections) - 1; i >= 0; i-- {
			c, err := app.FindCollectionByNameOrId(collections[i].Name)
			if err != nil {
				continue
			}
			if err := app.Delete(c); err != nil {
				return fmt.Errorf("delete %s: %w", c.Name, err)
			}
		}

		users, err := app.FindCollectionByNameOrId(store.UsersCollection)
		if err != nil {
			return err
		}
		users.Fields.RemoveByName("role")
		return app.Save(users)
	})
}
