// Package routes holds the HTTP routes of the example application.
package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/husca"
	"github.com/dmitrymomot/husca/middlewares"
	"github.com/dmitrymomot/husca/pkg/cache"
)

// User is the resource served by the example.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createUser struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type userID struct {
	ID string `param:"id" validate:"required,uuid"`
}

// Users builds the /users router on top of store.
func Users(store cache.Cache[User]) *husca.Router {
	h := &users{store: store}

	return husca.NewRouter(husca.WithPrefix("/users"), husca.WithMethodMismatch()).
		Post("/", husca.RouteConfig{
			Slots:  middlewares.Validate[createUser](),
			Action: husca.Action(h.create),
		}).
		Get("/:id", husca.RouteConfig{
			Slots:  middlewares.Validate[userID](middlewares.BindParams),
			Action: husca.Action(h.show),
		}).
		Delete("/:id", husca.RouteConfig{
			Slots:  middlewares.Validate[userID](middlewares.BindParams),
			Action: husca.Action(h.remove),
		})
}

type users struct {
	store cache.Cache[User]
}

func (h *users) create(c husca.Context) error {
	in := middlewares.Validated[createUser](c)
	u, err := CreateUser(c.Context(), h.store, in.Name, in.Email)
	if err != nil {
		return err
	}
	c.LogInfo("user created", "id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *users) show(c husca.Context) error {
	u, err := h.store.Get(c.Context(), middlewares.Validated[userID](c).ID)
	if errors.Is(err, cache.ErrNotFound) {
		return c.Error(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *users) remove(c husca.Context) error {
	if err := h.store.Delete(c.Context(), middlewares.Validated[userID](c).ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateUser stores a new user. The HTTP and console surfaces both use it.
func CreateUser(ctx context.Context, store cache.Cache[User], name, email string) (User, error) {
	u := User{ID: uuid.NewString(), Name: name, Email: email}
	if err := store.Set(ctx, u.ID, u, -1); err != nil {
		return User{}, err
	}
	return u, nil
}
