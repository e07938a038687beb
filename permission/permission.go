package permission

import "sort"

// Action is a verb an administrator may perform on a resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionManage subsumes every other action on the same resource.
	ActionManage Action = "manage"
)

// Resource names a protected surface of the admin application.
type Resource string

const (
	// ResourceWildcard combined with ActionManage grants every permission.
	ResourceWildcard Resource = "*"

	ResourceProduct       Resource = "product"
	ResourceCategory      Resource = "category"
	ResourceBrand         Resource = "brand"
	ResourceQuote         Resource = "quote"
	ResourceAdministrator Resource = "administrator"
	ResourceAudit         Resource = "audit"
)

// Role is one of the four fixed administrator tiers.
type Role string

const (
	RoleSuperAdministrator Role = "super-administrator"
	RoleAdministrator      Role = "administrator"
	RoleEditor             Role = "editor"
	RoleViewer             Role = "viewer"
)

// Permission is a single (resource, action) grant.
type Permission struct {
	Resource Resource
	Action   Action
}

var crudActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

var allResources = []Resource{
	ResourceProduct,
	ResourceCategory,
	ResourceBrand,
	ResourceQuote,
	ResourceAdministrator,
	ResourceAudit,
}

var catalogResources = []Resource{ResourceProduct, ResourceCategory, ResourceBrand}

// roleGrants is built once at init and treated as immutable afterwards.
// Resolution never writes to it.
var roleGrants = buildGrants()

func buildGrants() map[Role]map[Permission]struct{} {
	grants := map[Role]map[Permission]struct{}{
		RoleSuperAdministrator: {},
		RoleAdministrator:      {},
		RoleEditor:             {},
		RoleViewer:             {},
	}

	grant := func(role Role, resource Resource, actions ...Action) {
		for _, action := range actions {
			grants[role][Permission{Resource: resource, Action: action}] = struct{}{}
		}
	}

	grant(RoleSuperAdministrator, ResourceWildcard, ActionManage)

	grant(RoleAdministrator, ResourceProduct, ActionManage)
	grant(RoleAdministrator, ResourceCategory, ActionManage)
	grant(RoleAdministrator, ResourceBrand, ActionManage)
	grant(RoleAdministrator, ResourceQuote, ActionManage)
	grant(RoleAdministrator, ResourceAdministrator, ActionRead)
	grant(RoleAdministrator, ResourceAudit, ActionRead)

	for _, resource := range catalogResources {
		grant(RoleEditor, resource, ActionCreate, ActionRead, ActionUpdate)
	}
	grant(RoleEditor, ResourceQuote, ActionRead, ActionUpdate)

	for _, resource := range allResources {
		grant(RoleViewer, resource, ActionRead)
	}

	return grants
}

// HasPermission reports whether role may perform action on resource. It is a
// pure function over the static table: true on the system-wide wildcard, an
// exact (resource, action) grant, or a (resource, manage) grant.
func HasPermission(role Role, resource Resource, action Action) bool {
	grants, ok := roleGrants[role]
	if !ok {
		return false
	}
	if _, ok := grants[Permission{Resource: ResourceWildcard, Action: ActionManage}]; ok {
		return true
	}
	if _, ok := grants[Permission{Resource: resource, Action: action}]; ok {
		return true
	}
	if _, ok := grants[Permission{Resource: resource, Action: ActionManage}]; ok {
		return true
	}
	return false
}

// ValidRole reports whether role is one of the four fixed tiers.
func ValidRole(role Role) bool {
	_, ok := roleGrants[role]
	return ok
}

// Roles returns the fixed role tiers in privilege order.
func Roles() []Role {
	return []Role{RoleSuperAdministrator, RoleAdministrator, RoleEditor, RoleViewer}
}

// Actions returns every action, ActionManage last.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}
}

// Resources returns every concrete resource (the wildcard is excluded).
func Resources() []Resource {
	out := make([]Resource, len(allResources))
	copy(out, allResources)
	return out
}

// Permissions returns a sorted copy of the grants held directly by role.
// Subsumption is not expanded: an administrator holding (product, manage) is
// listed with that single grant, not four synthetic action grants.
func Permissions(role Role) []Permission {
	grants, ok := roleGrants[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(grants))
	for p := range grants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}
