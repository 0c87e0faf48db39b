// pkg/provider/lti/roles.go
package lti

import "strings"

// Role is a normalized (lowercase) LTI role. The roles parameter may carry
// either short names ("Instructor") or full URNs
// ("urn:lti:role:ims/lis/Instructor"); both normalize to the same Role.
type Role string

const (
	RoleLearner           Role = "learner"
	RoleStudent           Role = "student"
	RoleInstructor        Role = "instructor"
	RoleTeacher           Role = "teacher"
	RoleStaff             Role = "staff"
	RoleAdministrator     Role = "administrator"
	RoleContentDeveloper  Role = "contentdeveloper"
	RoleTeachingAssistant Role = "teachingassistant"
	RoleMentor            Role = "mentor"
)

var knownRoles = map[Role]struct{}{
	RoleLearner:           {},
	RoleStudent:           {},
	RoleInstructor:        {},
	RoleTeacher:           {},
	RoleStaff:             {},
	RoleAdministrator:     {},
	RoleContentDeveloper:  {},
	RoleTeachingAssistant: {},
	RoleMentor:            {},
}

// RoleSet is a deduplicated set of recognized roles.
type RoleSet map[Role]struct{}

// ParseRoles parses a comma-separated roles parameter into a RoleSet.
// Parsing is order-independent; unrecognized tokens are ignored rather than
// erroring, per the leniency the LTI spec expects from providers.
func ParseRoles(raw string) RoleSet {
	set := RoleSet{}
	for _, token := range strings.Split(raw, ",") {
		role := normalizeRole(token)
		if _, ok := knownRoles[role]; ok {
			set[role] = struct{}{}
		}
	}
	return set
}

// normalizeRole lowercases a token and strips URN prefixes such as
// "urn:lti:role:ims/lis/" or "urn:lti:instrole:ims/lis/".
func normalizeRole(token string) Role {
	token = strings.TrimSpace(strings.ToLower(token))
	if i := strings.LastIndexByte(token, '/'); i >= 0 {
		token = token[i+1:]
	}
	return Role(token)
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if s.Has(role) {
			return true
		}
	}
	return false
}

// Slice returns the roles as strings, for serialization. Order is not
// specified.
func (s RoleSet) Slice() []string {
	out := make([]string, 0, len(s))
	for role := range s {
		out = append(out, string(role))
	}
	return out
}
