package profilesync_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal_backend/internals/constants"
	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/profilesync"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/testkit"
)

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		in                  string
		first, middle, last string
	}{
		{"", "", "", ""},
		{"Asha", "Asha", "", ""},
		{"Asha Rao", "Asha", "", "Rao"},
		{"  Asha  Devi   Rao ", "Asha", "Devi", "Rao"},
		{"A B C D", "A", "B C", "D"},
	}
	for _, tc := range cases {
		f, m, l := profilesync.SplitFullName(tc.in)
		assert.Equal(t, []string{tc.first, tc.middle, tc.last}, []string{f, m, l}, tc.in)
	}
}

func TestPushBothWays(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "asha@example.com")
	b := &biodataModel.BioDataModel{
		FirstName:      "Asha",
		LastName:       "Rao",
		ContactNumber:  "9000000001",
		PersonalEmail:  "asha.personal@example.com",
		ExperienceType: biodataModel.ExperienceFresher,
		Status:         biodataModel.StatusApproved,
		UserID:         &u.ID,
	}
	require.NoError(t, db.Create(b).Error)

	u.FullName = "Asha Devi Rao"
	u.Phone = "9111111111"
	u.Department = constants.DeptFinance
	linked, err := profilesync.PushUserToBiodata(db, u, profilesync.FieldName, profilesync.FieldPhone, profilesync.FieldDepartment)
	require.NoError(t, err)
	assert.True(t, linked)

	var got biodataModel.BioDataModel
	require.NoError(t, db.First(&got, "biodata_id = ?", b.BioDataID).Error)
	assert.Equal(t, "Devi", got.MiddleName)
	assert.Equal(t, "9111111111", got.ContactNumber)
	assert.Equal(t, constants.DeptFinance, got.Department)

	got.ContactNumber = "9222222222"
	got.Department = constants.DeptHR
	linked, err = profilesync.PushBiodataToUser(db, &got, profilesync.FieldPhone, profilesync.FieldDepartment)
	require.NoError(t, err)
	assert.True(t, linked)

	var gotUser userModel.UserModel
	require.NoError(t, db.First(&gotUser, "id = ?", u.ID).Error)
	assert.Equal(t, "9222222222", gotUser.Phone)
	assert.Equal(t, constants.DeptHR, gotUser.Department)
	assert.Equal(t, "Asha Devi Rao", gotUser.FullName)
}

func TestPushWithoutLink(t *testing.T) {
	db := testkit.NewDB(t)
	u := testkit.CreateUser(t, db, constants.RoleEmployee, "solo@example.com")

	linked, err := profilesync.PushUserToBiodata(db, u, profilesync.FieldPhone)
	require.NoError(t, err)
	assert.False(t, linked)

	missing := uuid.New()
	linked, err = profilesync.PushBiodataToUser(db, &biodataModel.BioDataModel{UserID: &missing}, profilesync.FieldPhone)
	require.NoError(t, err)
	assert.False(t, linked)
}
