// Package authz holds the role model and the per-action permission tables.
// Roles form a closed set: adding an action forces a decision for every role
// at the table literal, so a new endpoint cannot silently skip a role.
package authz

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// Parse validates a raw role string.
func Parse(raw string) (Role, error) {
	switch Role(raw) {
	case RoleClient, RoleWorker, RoleAdmin:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("authz: unknown role %q", raw)
	}
}

// SelfRegisterable reports whether the role may be chosen at registration.
// Admin accounts are provisioned out of band.
func (r Role) SelfRegisterable() bool {
	switch r {
	case RoleClient, RoleWorker:
		return true
	case RoleAdmin:
		return false
	}
	return false
}

// Action is a role-gated operation.
type Action string

const (
	ActionPostJob            Action = "post_job"
	ActionApplyToJob         Action = "apply_to_job"
	ActionRespondApplication Action = "respond_application"
	ActionManageCatalog      Action = "manage_catalog"
	ActionVerifyUser         Action = "verify_user"
	ActionViewAllRecords     Action = "view_all_records"
)

type roleSet struct {
	client bool
	worker bool
	admin  bool
}

func (s roleSet) allows(r Role) bool {
	switch r {
	case RoleClient:
		return s.client
	case RoleWorker:
		return s.worker
	case RoleAdmin:
		return s.admin
	}
	return false
}

// permissions is the authorization table. Each entry spells out all three
// roles; ownership checks on individual records stay with the owning service.
var permissions = map[Action]roleSet{
	ActionPostJob:            {client: true, worker: false, admin: true},
	ActionApplyToJob:         {client: false, worker: true, admin: false},
	ActionRespondApplication: {client: true, worker: false, admin: true},
	ActionManageCatalog:      {client: false, worker: false, admin: true},
	ActionVerifyUser:         {client: false, worker: false, admin: true},
	ActionViewAllRecords:     {client: false, worker: false, admin: true},
}

// Can reports whether the role is permitted to perform the action.
func Can(role Role, action Action) bool {
	set, ok := permissions[action]
	if !ok {
		return false
	}
	return set.allows(role)
}
