package users_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/users/user/model"
	users "hrportal_backend/internals/seeds/users"
	"hrportal_backend/internals/testkit"
)

type SeedSuite struct {
	suite.Suite
	db *gorm.DB
}

func TestSeedSuite(t *testing.T) {
	suite.Run(t, new(SeedSuite))
}

func (s *SeedSuite) SetupTest() {
	s.db = testkit.NewDB(s.T())
}

func (s *SeedSuite) writeFile(content string) string {
	path := filepath.Join(s.T().TempDir(), "users.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *SeedSuite) TestSeedUsersFromJSON() {
	testkit.CreateUser(s.T(), s.db, constants.RoleAdmin, "hr@corp.test")
	path := s.writeFile(`[
		{"full_name": "HR", "email": "HR@corp.test", "password": "secret123", "role": "admin"},
		{"full_name": "Trainer", "email": "trainer@corp.test", "password": "secret123", "role": "trainer"},
		{"full_name": "Ghost", "email": "ghost@corp.test", "password": "secret123", "role": "wizard"}
	]`)

	n, err := users.SeedUsersFromJSON(s.db, path)
	s.Require().NoError(err)
	s.Equal(1, n)

	var trainer model.UserModel
	s.Require().NoError(s.db.First(&trainer, "email = ?", "trainer@corp.test").Error)
	s.Equal(constants.RoleTrainer, trainer.Role)
	s.True(trainer.IsActive)
	s.Equal(constants.PermissionsForRole(constants.RoleTrainer), trainer.PermissionMap())

	// running it again creates nothing
	n, err = users.SeedUsersFromJSON(s.db, path)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *SeedSuite) TestSeedUsersBadFile() {
	_, err := users.SeedUsersFromJSON(s.db, filepath.Join(s.T().TempDir(), "missing.json"))
	s.Error(err)

	_, err = users.SeedUsersFromJSON(s.db, s.writeFile(`{"not": "a list"}`))
	s.Error(err)
}

func (s *SeedSuite) TestCreateSuperuser() {
	u, err := users.CreateSuperuser(s.db, " Root@Corp.test ", "longpassword", "Root")
	s.Require().NoError(err)
	s.Equal("root@corp.test", u.Email)
	s.Equal(constants.RoleSuperAdmin, u.Role)

	_, err = users.CreateSuperuser(s.db, "root@corp.test", "longpassword", "Again")
	s.ErrorIs(err, users.ErrEmailTaken)

	_, err = users.CreateSuperuser(s.db, "other@corp.test", "short", "")
	s.Error(err)
}
