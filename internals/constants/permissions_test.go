package constants

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		module string
		action string
		want   bool
	}{
		{"super admin edits users", RoleSuperAdmin, ModuleUsers, ActionEdit, true},
		{"admin cannot create users", RoleAdmin, ModuleUsers, ActionCreate, false},
		{"admin exports users", RoleAdmin, ModuleUsers, ActionExport, true},
		{"admin deletes biodata", RoleAdmin, ModuleBiodata, ActionDelete, true},
		{"scrum master views training", RoleScrumMaster, ModuleTraining, ActionView, true},
		{"scrum master cannot create training", RoleScrumMaster, ModuleTraining, ActionCreate, false},
		{"trainer creates users", RoleTrainer, ModuleUsers, ActionCreate, true},
		{"trainer cannot edit users", RoleTrainer, ModuleUsers, ActionEdit, false},
		{"trainer deletes users", RoleTrainer, ModuleUsers, ActionDelete, true},
		{"trainer cannot edit biodata", RoleTrainer, ModuleBiodata, ActionEdit, false},
		{"everyone staff sees dashboard", RoleScrumMaster, ModuleDashboard, ActionView, true},
		{"employee has nothing", RoleEmployee, ModuleDashboard, ActionView, false},
		{"unknown module", RoleSuperAdmin, "payroll", ActionView, false},
		{"unknown action", RoleSuperAdmin, ModuleUsers, "approve", false},
		{"unknown role", "intern", ModuleUsers, ActionView, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(PermissionsForRole(tt.role), tt.module, tt.action))
		})
	}
}

func TestHasPermissionNilMap(t *testing.T) {
	assert.False(t, HasPermission(nil, ModuleUsers, ActionView))
}

func TestPermissionsForRoleReturnsCopy(t *testing.T) {
	p := PermissionsForRole(RoleAdmin)
	p[ModuleUsers][ActionEdit] = true

	again := PermissionsForRole(RoleAdmin)
	assert.False(t, again.Has(ModuleUsers, ActionEdit))
}

func TestTrainingManageGrantedToStaff(t *testing.T) {
	for _, role := range []string{RoleSuperAdmin, RoleAdmin, RoleScrumMaster, RoleTrainer} {
		assert.True(t, PermissionsForRole(role).Has(ModuleTraining, ActionManage), role)
	}
	assert.False(t, PermissionsForRole(RoleEmployee).Has(ModuleTraining, ActionManage))
}

func TestLoadRolePermissionsFile(t *testing.T) {
	t.Cleanup(ResetRolePermissions)

	path := filepath.Join(t.TempDir(), "roles.yaml")
	content := `
scrum_master:
  dashboard:
    view: true
  training:
    view: true
    create: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, LoadRolePermissionsFile(path))

	want := PermissionMap{
		ModuleDashboard: {ActionView: true},
		ModuleTraining:  {ActionView: true, ActionCreate: true},
	}
	if diff := cmp.Diff(want, PermissionsForRole(RoleScrumMaster)); diff != "" {
		t.Errorf("scrum_master permissions mismatch (-want +got):\n%s", diff)
	}

	// untouched roles keep their defaults
	assert.True(t, PermissionsForRole(RoleAdmin).Has(ModuleBiodata, ActionEdit))
}

func TestLoadRolePermissionsFileRejectsUnknownRole(t *testing.T) {
	t.Cleanup(ResetRolePermissions)

	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intern:\n  users:\n    view: true\n"), 0o600))

	err := LoadRolePermissionsFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intern")
}

func TestHasAllowedExt(t *testing.T) {
	assert.True(t, HasAllowedExt("cv.PDF", DocumentExtensions))
	assert.False(t, HasAllowedExt("cv.docx", DocumentExtensions))
	assert.True(t, HasAllowedExt("main.py", SubmissionExtensions))
	assert.False(t, HasAllowedExt("noext", SubmissionExtensions))
}
