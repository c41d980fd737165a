package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Out = &out
	root := NewRootCmd(app)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCmd(t *testing.T) {
	app := &App{DB: testutil.NewTestDB(t)}

	out, err := run(t, app, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestSeedCmd_OnlyIntoEmptyCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := &App{DB: db}

	out, err := run(t, app, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded")

	var n int64
	db.Model(&models.ChecklistItem{}).Count(&n)
	assert.Equal(t, int64(len(defaultCatalog)), n)

	var days []int
	db.Model(&models.ChecklistItem{}).Distinct().Order("day").Pluck("day", &days)
	assert.Equal(t, []int{1, 2, 3}, days)

	out, err = run(t, app, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")
	db.Model(&models.ChecklistItem{}).Count(&n)
	assert.Equal(t, int64(len(defaultCatalog)), n)
}

func TestGrantRoleCmd(t *testing.T) {
	db := testutil.NewTestDB(t)
	app := &App{DB: db}
	user := testutil.CreateUser(t, db, testutil.WithEmail("lead@corp.example"))

	out, err := run(t, app, "grant-role", "--email", "Lead@Corp.Example")
	require.NoError(t, err)
	assert.Contains(t, out, "is now admin")

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "admin", stored.Role)

	_, err = run(t, app, "grant-role", "--email", "lead@corp.example", "--role", "owner")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, app, "grant-role", "--email", "ghost@corp.example", "--role", "trainer")
	assert.ErrorContains(t, err, "no user")
}
