package cows

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrAtLeastOneTag: toda vaca tiene siempre al menos un tag con número.
	ErrAtLeastOneTag = errors.New("at least one tag with a number is required")
)

// DuplicateTagError es el conflicto recuperable: lleva el número en
// conflicto y la vaca que ya lo tiene, para que el caller pueda ofrecer
// "ir a esa vaca". Se construye tanto en el pre-check como traduciendo
// la violación de constraint del store (race).
type DuplicateTagError struct {
	Number string
	CowID  string
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("tag %q is already in use by cow %s", e.Number, e.CowID)
}

// IsDuplicateTag desenvuelve un *DuplicateTagError si lo hay.
func IsDuplicateTag(err error) (*DuplicateTagError, bool) {
	var dup *DuplicateTagError
	if errors.As(err, &dup) {
		return dup, true
	}
	return nil, false
}
