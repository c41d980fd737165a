package services

import (
	"context"
	"testing"
	"time"

	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_PaginationAndOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 5)
	for i := range ids {
		u := testutil.CreateUser(t, db)
		require.NoError(t, db.Model(u).Update("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
		ids[i] = u.ID
	}

	page1, err := svc.ListUsers(context.Background(), 1, 2, "")
	require.NoError(t, err)
	require.Len(t, page1.Users, 2)
	assert.Equal(t, ids[4], page1.Users[0].ID, "newest first")
	assert.Equal(t, ids[3], page1.Users[1].ID)
	assert.Equal(t, int64(5), page1.Pagination.Total)
	assert.Equal(t, 3, page1.Pagination.TotalPages)

	page3, err := svc.ListUsers(context.Background(), 3, 2, "")
	require.NoError(t, err)
	require.Len(t, page3.Users, 1)
	assert.Equal(t, ids[0], page3.Users[0].ID)
}

func TestListUsers_SearchCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)

	hanako := testutil.CreateUser(t, db, testutil.WithName("Hanako Sato"), testutil.WithEmail("hanako@corp.example"))
	taro := testutil.CreateUser(t, db, testutil.WithName("Taro"), testutil.WithEmail("SATO.taro@corp.example"))
	testutil.CreateUser(t, db, testutil.WithName("Jiro"), testutil.WithEmail("jiro@corp.example"))
	testutil.CreateUser(t, db, testutil.WithName("100% Ken"), testutil.WithEmail("ken@corp.example"))

	res, err := svc.ListUsers(context.Background(), 1, 20, "sAtO")
	require.NoError(t, err)
	got := []string{}
	for _, u := range res.Users {
		got = append(got, u.ID)
	}
	assert.ElementsMatch(t, []string{hanako.ID, taro.ID}, got)

	res, err = svc.ListUsers(context.Background(), 1, 20, "%")
	require.NoError(t, err)
	require.Len(t, res.Users, 1, "wildcards are matched literally")
	assert.Equal(t, "100% Ken", res.Users[0].Name)
}

func TestListUsers_ProgressRate(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)

	busy := testutil.CreateUser(t, db, testutil.WithName("busy"))
	testutil.CreateUser(t, db, testutil.WithName("idle"))
	items := []*models.ChecklistItem{testutil.CreateItem(t, db), testutil.CreateItem(t, db), testutil.CreateItem(t, db)}
	testutil.CreateProgress(t, db, busy.ID, items[0].ID, models.StatusResolved)
	testutil.CreateProgress(t, db, busy.ID, items[1].ID, models.StatusResolved)
	testutil.CreateProgress(t, db, busy.ID, items[2].ID, models.StatusUnresolved)

	res, err := svc.ListUsers(context.Background(), 1, 20, "")
	require.NoError(t, err)
	rates := map[string]int{}
	for _, u := range res.Users {
		rates[u.Name] = u.ProgressRate
	}
	assert.Equal(t, map[string]int{"busy": 67, "idle": 0}, rates)
}

func TestListUsers_Validation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name        string
		page, limit int
		search      string
	}{
		{"page zero", 0, 20, ""},
		{"limit zero", 1, 0, ""},
		{"limit too large", 1, MaxPageSize + 1, ""},
		{"search too long", 1, 20, string(long)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListUsers(context.Background(), tt.page, tt.limit, tt.search)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpdateUserRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	admin := testutil.CreateUser(t, db, testutil.WithRole("admin"))
	trainer := testutil.CreateUser(t, db, testutil.WithRole("trainer"))
	member := testutil.CreateUser(t, db)

	updated, err := svc.UpdateUserRole(ctx, admin.ID, member.ID, "trainer")
	require.NoError(t, err)
	assert.Equal(t, "trainer", updated.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	assert.Equal(t, "trainer", stored.Role)

	_, err = svc.UpdateUserRole(ctx, trainer.ID, member.ID, "admin")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.UpdateUserRole(ctx, member.ID, member.ID, "admin")
	assert.ErrorIs(t, err, ErrForbidden, "stored role is checked, not a claimed one")

	_, err = svc.UpdateUserRole(ctx, admin.ID, member.ID, "owner")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateUserRole(ctx, admin.ID, "missing", "user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
