// Package validator checks input with two complementary styles that report
// the same ValidationErrors.
//
// Explicit rules, composed with Apply:
//
//	err := validator.Apply(
//		validator.RequiredString("email", in.Email),
//		validator.MinLenString("password", in.Password, 8),
//		validator.MinNum("age", in.Age, 18),
//		validator.Tag("website", in.Website, "omitempty,url"),
//	)
//
// Struct tags, checked by github.com/go-playground/validator/v10:
//
//	type Signup struct {
//		Email string `json:"email" validate:"required,email"`
//		Age   int    `json:"age" validate:"gte=18"`
//	}
//
//	err := validator.ValidateStruct(in)
//
// Fields are reported under their json names. Custom tags are added with
// RegisterRule and work in both styles.
//
// Every ValidationError carries a TranslationKey ("validation.required",
// "validation.min_length", ...) and TranslationValues, so messages can be
// localized in place with Translate.
package validator
