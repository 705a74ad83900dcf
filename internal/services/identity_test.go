package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ventlinehq/ventline-backend/internal/models"
)

func TestResolveIdentityShow(t *testing.T) {
	identity, err := ResolveIdentity(ChoiceShow, "user-42")
	require.NoError(t, err)
	require.Equal(t, "user-42", identity)
}

func TestResolveIdentityHide(t *testing.T) {
	identity, err := ResolveIdentity(ChoiceHide, "user-42")
	require.NoError(t, err)
	require.Equal(t, models.IdentityHidden, identity)
}

func TestResolveIdentityInvalidChoice(t *testing.T) {
	for _, choice := range []IdentityChoice{"", "maybe", "SHOW", "hidden"} {
		_, err := ResolveIdentity(choice, "user-42")
		require.ErrorIs(t, err, ErrInvalidChoice)
	}
}
