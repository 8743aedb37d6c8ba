package middlewares

import (
	"github.com/dmitrymomot/husca/internal"
	"github.com/dmitrymomot/husca/internal/slot"
	"github.com/dmitrymomot/husca/pkg/validator"
)

type validatedKey[T any] struct{}

// Validate returns a slot that binds the request into a new T, checks it
// with its `validate` struct tags and stores it for Validated.
// Binders run in order, so later ones overwrite fields set by earlier ones.
// Without binders the JSON body is used.
//
// Bind failures end the request with 400. Validation failures end it with
// 422, and the default error handler lists the messages per field.
//
//	router.New().Post("/users/:id", router.Config{
//		Slots:  middlewares.Validate[UpdateUser](middlewares.BindParams, middlewares.BindJSON),
//		Action: internal.Action(updateUser),
//	})
func Validate[T any](binders ...Binder) *slot.Slot {
	if len(binders) == 0 {
		binders = []Binder{BindJSON}
	}

	return internal.Web(func(c internal.Context, next internal.Next) (any, error) {
		v := new(T)
		for _, bind := range binders {
			if err := bind(c, v); err != nil {
				return nil, err
			}
		}

		if err := validator.ValidateStruct(v); err != nil {
			if ve := validator.ExtractValidationErrors(err); ve != nil {
				return nil, internal.ErrUnprocessable("validation failed", internal.WithError(ve))
			}
			return nil, err
		}

		c.Set(validatedKey[T]{}, v)
		return next()
	})
}

// Validated returns the value stored by Validate[T], or nil when that slot
// did not run for this request.
func Validated[T any](c internal.Context) *T {
	v, _ := c.Get(validatedKey[T]{}).(*T)
	return v
}
