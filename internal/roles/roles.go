// Package roles translates provider-specific hierarchy codes into the
// canonical role strings the broker stores on a user.
package roles

import "regexp"

// BaseRole is granted to every authenticated user regardless of claims.
const BaseRole = "ROLE_USER"

var (
	hierCodeRe = regexp.MustCompile(`HierCode\s+([A-Z0-9]+)`)
	storeRe    = regexp.MustCompile(`^UK(\d+)$`)
	groupRe    = regexp.MustCompile(`^UKGP(\d+)$`)
)

// MapToRoles maps raw hierarchy code strings (e.g. "GG-XX-HierCode UK01001")
// to canonical roles. Store codes UK<digits> become ROLE_STORE_<digits>, group
// codes UKGP<digits> become ROLE_GROUP_<digits>. Codes that match neither
// pattern, or strings without the HierCode marker, are skipped. The result is
// deduplicated and always contains BaseRole.
func MapToRoles(hierCodes []string) []string {
	out := []string{BaseRole}
	seen := map[string]struct{}{BaseRole: {}}

	add := func(role string) {
		if _, ok := seen[role]; ok {
			return
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}

	for _, raw := range hierCodes {
		m := hierCodeRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		code := m[1]
		if sm := storeRe.FindStringSubmatch(code); sm != nil {
			add("ROLE_STORE_" + sm[1])
		}
		if gm := groupRe.FindStringSubmatch(code); gm != nil {
			add("ROLE_GROUP_" + gm[1])
		}
	}
	return out
}
