package service

import "errors"

// Sentinel errors surfaced to the API layer, which maps them onto HTTP
// statuses. Anything not listed here is treated as a server fault.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrAlreadyAdded       = errors.New("recipe already added")
	ErrNotAdded           = errors.New("recipe is not in the list")
	ErrSelfFollow         = errors.New("cannot subscribe to yourself")
	ErrAlreadyFollowing   = errors.New("already subscribed to this author")
	ErrNotFollowing       = errors.New("not subscribed to this author")
	ErrNotRecipeAuthor    = errors.New("only the author can modify this recipe")
)

// ValidationError reports a rejected submission with a caller-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
