package recipe

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrNotAuthor          = errors.New("only the author can modify this recipe")
	ErrInvalidImage       = errors.New("image is invalid")
)

// UnknownReferenceError reports body ids (tags or ingredients) that do not exist.
type UnknownReferenceError struct {
	Field string
	IDs   []int64
}

func (e *UnknownReferenceError) Error() string {
	noun := "tag"
	if e.Field == "ingredients" {
		noun = "ingredient"
	}
	if len(e.IDs) == 0 {
		return "unknown " + noun + " id"
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("unknown %s id: %s", noun, strings.Join(ids, ", "))
}
