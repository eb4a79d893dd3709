package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapToRolesAlwaysAssignsBaseRole(t *testing.T) {
	assert.Contains(t, MapToRoles(nil), BaseRole)
	assert.Contains(t, MapToRoles([]string{}), BaseRole)
	assert.Contains(t, MapToRoles([]string{"garbage"}), BaseRole)
}

func TestMapToRolesStoreCode(t *testing.T) {
	got := MapToRoles([]string{"GG-XX-Global-HierCode UK01001"})

	assert.Contains(t, got, BaseRole)
	assert.Contains(t, got, "ROLE_STORE_01001")
	assert.Len(t, got, 2)
}

func TestMapToRolesGroupCode(t *testing.T) {
	got := MapToRoles([]string{"GG-XX-Global-HierCode UKGP001"})

	assert.Contains(t, got, BaseRole)
	assert.Contains(t, got, "ROLE_GROUP_001")
	assert.Len(t, got, 2)
}

func TestMapToRolesMultipleCodes(t *testing.T) {
	got := MapToRoles([]string{
		"GG-XX-Global-HierCode UKGP001",
		"GG-XX-Global-HierCode UK01001",
	})

	assert.ElementsMatch(t, []string{BaseRole, "ROLE_GROUP_001", "ROLE_STORE_01001"}, got)
}

func TestMapToRolesDeduplicates(t *testing.T) {
	got := MapToRoles([]string{
		"GG-XX-Global-HierCode UKGP001",
		"GG-XX-Global-HierCode UK01001",
		"GG-XX-Global-HierCode UK01001",
	})

	assert.Len(t, got, 3)
}

func TestMapToRolesIgnoresInvalidCodes(t *testing.T) {
	got := MapToRoles([]string{
		"GG-XX-Global-HierCode UKGP001",
		"GG-XX-Global-HierCode UK01001",
		"GG-XX-Global-HierCode INVALID100",
		"GG-XX-Global-HierCode 001",
	})

	assert.ElementsMatch(t, []string{BaseRole, "ROLE_GROUP_001", "ROLE_STORE_01001"}, got)
}

func TestMapToRolesResilientToUnexpectedFormats(t *testing.T) {
	got := MapToRoles([]string{
		"GG-XX-Global-HierCode UKGP001",
		"GG-XX-Global-HierCode 001",
		"GG-XX-Global-HierCode UK01001",
		"GG-XX-Global-HierCode INVALID200",
		"something_wrong_here",
		"GG-zz-Global-HeetCode INVALID100",
		"",
	})

	assert.ElementsMatch(t, []string{BaseRole, "ROLE_GROUP_001", "ROLE_STORE_01001"}, got)
}
