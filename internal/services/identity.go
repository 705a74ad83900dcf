package services

import (
	"errors"

	"github.com/ventlinehq/ventline-backend/internal/models"
)

// IdentityChoice is the user's disclosure decision for one submission.
type IdentityChoice string

const (
	ChoiceShow IdentityChoice = "show"
	ChoiceHide IdentityChoice = "hide"
)

// ErrInvalidChoice is returned for any value outside {show, hide}.
var ErrInvalidChoice = errors.New("invalid identity choice")

// ResolveIdentity maps a disclosure choice to the identity value stored on the
// record: "hidden", or the user's own identifier when they chose to show it.
// Pure function, no side effects.
func ResolveIdentity(choice IdentityChoice, userID string) (string, error) {
	switch choice {
	case ChoiceShow:
		return userID, nil
	case ChoiceHide:
		return models.IdentityHidden, nil
	default:
		return "", ErrInvalidChoice
	}
}
