// Package commands holds the console commands of the example application.
package commands

import (
	"errors"

	"github.com/dmitrymomot/husca"
	"github.com/dmitrymomot/husca/example/routes"
	"github.com/dmitrymomot/husca/pkg/cache"
	"github.com/dmitrymomot/husca/pkg/validator"
)

// Users builds the users:* commands.
//
//	example users:create --name=Ann --email=ann@example.com
func Users(store cache.Cache[routes.User]) *husca.Commander {
	return husca.NewCommander(husca.WithCommandPrefix("users:")).
		Create("create", husca.RouteConfig{
			Action: husca.CommandAction(func(c husca.ConsoleContext) error {
				name, email := c.Option("name"), c.Option("email")
				if err := validator.Apply(
					validator.RequiredString("name", name),
					validator.RequiredString("email", email),
					validator.Tag("email", email, "email"),
				); err != nil {
					return err
				}

				u, err := routes.CreateUser(c, store, name, email)
				if err != nil {
					return err
				}
				c.Printf("%s\n", u.ID)
				return nil
			}),
		}).
		Create("show", husca.RouteConfig{
			Action: husca.CommandAction(func(c husca.ConsoleContext) error {
				id := c.Arg(0)
				if id == "" {
					return errors.New("usage: users:show <id>")
				}
				u, err := store.Get(c, id)
				if err != nil {
					return err
				}
				c.Printf("%s\t%s\t%s\n", u.ID, u.Name, u.Email)
				return nil
			}),
		})
}

// Serve builds the serve command, which runs app until the process is
// interrupted.
func Serve(app *husca.App, cfg husca.ServerConfig, hooks ...husca.RunOption) *husca.Commander {
	return husca.NewCommander().Create("serve", husca.RouteConfig{
		Action: husca.CommandAction(func(c husca.ConsoleContext) error {
			opts := append(cfg.Options(), husca.WithContext(c), husca.Fallback(app))
			if addr := c.Option("addr"); addr != "" {
				opts = append(opts, husca.Address(addr))
			}
			return husca.Run(append(opts, hooks...)...)
		}),
	})
}
