package user

import (
	"fmt"
	"strings"
)

// Role is the coarse permission group a user belongs to.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

// Capability names a single operation a principal may perform.
type Capability string

const (
	CapClientRead   Capability = "client:read"
	CapClientCreate Capability = "client:create"
	CapClientUpdate Capability = "client:update"
	CapClientDelete Capability = "client:delete"
	CapCompanyRead  Capability = "company:read"
	CapCompanyWrite Capability = "company:write"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapClientRead:   {},
		CapClientCreate: {},
		CapClientUpdate: {},
		CapClientDelete: {},
		CapCompanyRead:  {},
		CapCompanyWrite: {},
	},
	RoleManager: {
		CapClientRead:   {},
		CapClientUpdate: {},
		CapClientDelete: {},
		CapCompanyRead:  {},
	},
}

// ParseRole normalizes s and checks it is a known role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleCapabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Can reports whether the role grants c. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}

func (r Role) String() string { return string(r) }
