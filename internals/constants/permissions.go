package constants

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	ModuleDashboard = "dashboard"
	ModuleUsers     = "users"
	ModuleBiodata   = "biodata"
	ModuleTraining  = "training"
	ModuleProjects  = "projects"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionExport = "export"
	ActionManage = "manage"
)

// PermissionMap is module -> action -> granted. A copy is stored on each user.
type PermissionMap map[string]map[string]bool

func (p PermissionMap) Has(module, action string) bool {
	return HasPermission(p, module, action)
}

// Clone returns a deep copy so callers can't mutate the role table.
func (p PermissionMap) Clone() PermissionMap {
	out := make(PermissionMap, len(p))
	for module, actions := range p {
		m := make(map[string]bool, len(actions))
		for a, v := range actions {
			m[a] = v
		}
		out[module] = m
	}
	return out
}

func HasPermission(perms PermissionMap, module, action string) bool {
	if perms == nil {
		return false
	}
	actions, ok := perms[module]
	if !ok {
		return false
	}
	return actions[action]
}

func crud(view, create, edit, del, export bool) map[string]bool {
	return map[string]bool{
		ActionView:   view,
		ActionCreate: create,
		ActionEdit:   edit,
		ActionDelete: del,
		ActionExport: export,
	}
}

func defaultRolePermissions() map[string]PermissionMap {
	all := func() map[string]bool { return crud(true, true, true, true, true) }
	viewExport := func() map[string]bool { return crud(true, false, false, false, true) }
	dashboard := func() map[string]bool { return map[string]bool{ActionView: true} }
	training := func(base map[string]bool) map[string]bool {
		base[ActionManage] = true
		return base
	}

	return map[string]PermissionMap{
		RoleSuperAdmin: {
			ModuleDashboard: dashboard(),
			ModuleUsers:     all(),
			ModuleBiodata:   all(),
			ModuleTraining:  training(all()),
			ModuleProjects:  all(),
		},
		RoleAdmin: {
			ModuleDashboard: dashboard(),
			ModuleUsers:     viewExport(),
			ModuleBiodata:   all(),
			ModuleTraining:  training(all()),
			ModuleProjects:  all(),
		},
		RoleScrumMaster: {
			ModuleDashboard: dashboard(),
			ModuleUsers:     viewExport(),
			ModuleBiodata:   viewExport(),
			ModuleTraining:  training(viewExport()),
			ModuleProjects:  viewExport(),
		},
		RoleTrainer: {
			ModuleDashboard: dashboard(),
			ModuleUsers:     crud(true, true, false, true, true),
			ModuleBiodata:   viewExport(),
			ModuleTraining:  training(viewExport()),
			ModuleProjects:  viewExport(),
		},
		RoleEmployee: {},
	}
}

var (
	rolePermMu sync.RWMutex
	rolePerms  = defaultRolePermissions()
)

// PermissionsForRole returns a fresh copy of the role's table entry.
// Unknown roles get an empty map.
func PermissionsForRole(role string) PermissionMap {
	rolePermMu.RLock()
	defer rolePermMu.RUnlock()
	if p, ok := rolePerms[role]; ok {
		return p.Clone()
	}
	return PermissionMap{}
}

// ResetRolePermissions restores the compiled-in table.
func ResetRolePermissions() {
	rolePermMu.Lock()
	rolePerms = defaultRolePermissions()
	rolePermMu.Unlock()
}

// LoadRolePermissionsFile replaces the role table with the contents of a YAML
// file shaped as role -> module -> action -> bool. Roles missing from the file
// keep their default entry.
func LoadRolePermissionsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read role permissions: %w", err)
	}

	var parsed map[string]PermissionMap
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse role permissions: %w", err)
	}

	next := defaultRolePermissions()
	for role, perms := range parsed {
		if !IsValidRole(role) {
			return fmt.Errorf("unknown role %q in %s", role, path)
		}
		if perms == nil {
			perms = PermissionMap{}
		}
		next[role] = perms.Clone()
	}

	rolePermMu.Lock()
	rolePerms = next
	rolePermMu.Unlock()
	return nil
}
