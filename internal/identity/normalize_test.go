package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRequiresSubjectClaim(t *testing.T) {
	cases := []map[string]any{
		{},
		{"email": "a@b.com"},
		{"sub": ""},
		{"sub": "   "},
		{"sub": 12345},
	}
	for _, claims := range cases {
		_, err := Normalize(claims, ProviderKeycloakLocal, nil)
		assert.ErrorIs(t, err, ErrMissingSubjectClaim, "claims: %v", claims)
	}
}

func TestNormalizeMinimalClaims(t *testing.T) {
	ro, err := Normalize(map[string]any{"sub": "123", "email": "a@b.com"}, ProviderKeycloakLocal, nil)
	require.NoError(t, err)

	assert.Equal(t, ProviderKeycloakLocal, ro.Provider)
	assert.Equal(t, "123", ro.Subject)
	assert.Equal(t, "a@b.com", ro.Email)
	assert.Empty(t, ro.AccessLevels)
	assert.Empty(t, ro.HierCodes)
}

func TestNormalizeEmailIsBestEffort(t *testing.T) {
	ro, err := Normalize(map[string]any{"sub": "123", "email": 99}, ProviderKeycloakLocal, nil)
	require.NoError(t, err)
	assert.Empty(t, ro.Email)

	ro, err = Normalize(map[string]any{"sub": "123"}, ProviderKeycloakLocal, nil)
	require.NoError(t, err)
	assert.Empty(t, ro.Email)
}

func TestNormalizeCopiesAccessRoles(t *testing.T) {
	ar := &AccessRoles{
		AccessLevels: []string{"L1", "L2"},
		HierCodes:    []string{"X-HierCode UK01001"},
	}
	ro, err := Normalize(map[string]any{"sub": "123"}, ProviderKeycloakRetail, ar)
	require.NoError(t, err)

	assert.Equal(t, []string{"L1", "L2"}, ro.AccessLevels)
	assert.Equal(t, []string{"X-HierCode UK01001"}, ro.HierCodes)
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider("keycloak_local")
	assert.True(t, ok)
	assert.Equal(t, ProviderKeycloakLocal, p)

	_, ok = ParseProvider("github")
	assert.False(t, ok)
}
