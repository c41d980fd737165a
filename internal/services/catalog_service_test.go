package services

import (
	"context"
	"strings"
	"testing"

	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestListActiveForDay_FiltersAndOrders(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	third := testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(2), testutil.WithTitle("third"))
	first := testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(0), testutil.WithTitle("first"))
	second := testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(1), testutil.WithTitle("second"))
	testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(0), testutil.Inactive())
	testutil.CreateItem(t, db, testutil.WithDay(2), testutil.WithOrder(0))

	for day := MinDay; day <= MaxDay; day++ {
		items, err := svc.ListActiveForDay(ctx, day)
		require.NoError(t, err)
		for i, item := range items {
			assert.Equal(t, day, item.Day)
			assert.True(t, item.IsActive)
			if i > 0 {
				assert.LessOrEqual(t, items[i-1].OrderIndex, item.OrderIndex)
			}
		}
	}

	items, err := svc.ListActiveForDay(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestListItems_EmptyIsNotNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	items, err := svc.ListActiveForDay(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListItems_InactiveFilter(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	testutil.CreateItem(t, db)
	hidden := testutil.CreateItem(t, db, testutil.Inactive())

	items, err := svc.ListItems(context.Background(), ItemFilter{Active: ptr(false)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, hidden.ID, items[0].ID)

	all, err := svc.ListItems(context.Background(), ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateItem_Scenario(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	item, err := svc.CreateItem(context.Background(), &dto.CreateItemRequest{
		Day:        1,
		Category:   "login",
		Title:      "T",
		Summary:    "S",
		Steps:      []string{"a", "b"},
		OrderIndex: 0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, []string{"a", "b"}, []string(item.Steps))
	assert.True(t, item.IsActive)

	var stored models.ChecklistItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, []string{"a", "b"}, []string(stored.Steps))
	assert.True(t, stored.IsActive)
}

func TestCreateItem_ExplicitInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	item, err := svc.CreateItem(context.Background(), &dto.CreateItemRequest{
		Day: 2, Category: "mail", Title: "Outlook", Summary: "Set up mail",
		Steps: []string{"Open Outlook"}, IsActive: ptr(false),
	})
	require.NoError(t, err)

	var stored models.ChecklistItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestCreateItem_Validation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	valid := func() dto.CreateItemRequest {
		return dto.CreateItemRequest{Day: 1, Category: "c", Title: "t", Summary: "s", Steps: []string{"x"}}
	}

	tests := []struct {
		name   string
		mutate func(*dto.CreateItemRequest)
		field  string
	}{
		{"day zero", func(r *dto.CreateItemRequest) { r.Day = 0 }, "day"},
		{"day four", func(r *dto.CreateItemRequest) { r.Day = 4 }, "day"},
		{"blank category", func(r *dto.CreateItemRequest) { r.Category = "  " }, "category"},
		{"long category", func(r *dto.CreateItemRequest) { r.Category = strings.Repeat("c", 51) }, "category"},
		{"blank title", func(r *dto.CreateItemRequest) { r.Title = "" }, "title"},
		{"blank summary", func(r *dto.CreateItemRequest) { r.Summary = "" }, "summary"},
		{"no steps", func(r *dto.CreateItemRequest) { r.Steps = nil }, "steps"},
		{"empty step", func(r *dto.CreateItemRequest) { r.Steps = []string{"ok", " "} }, "steps[1]"},
		{"negative order", func(r *dto.CreateItemRequest) { r.OrderIndex = -1 }, "orderIndex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			_, err := svc.CreateItem(context.Background(), &req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	var n int64
	db.Model(&models.ChecklistItem{}).Count(&n)
	assert.Zero(t, n)
}

func TestCreateItem_ReportsEveryField(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	_, err := svc.CreateItem(context.Background(), &dto.CreateItemRequest{Day: 9, OrderIndex: -3})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 6)
}

func TestUpdateItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	item := testutil.CreateItem(t, db, testutil.WithOrder(3))

	updated, err := svc.UpdateItem(ctx, &dto.UpdateItemRequest{
		ID:         item.ID,
		Title:      ptr("New title"),
		OrderIndex: ptr(0),
		Steps:      ptr([]string{"one"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, 0, updated.OrderIndex)
	assert.Equal(t, []string{"one"}, []string(updated.Steps))
	assert.Equal(t, item.Summary, updated.Summary, "unsupplied fields stay unchanged")

	_, err = svc.UpdateItem(ctx, &dto.UpdateItemRequest{ID: item.ID, Day: ptr(5)})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateItem(ctx, &dto.UpdateItemRequest{ID: item.ID})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateItem(ctx, &dto.UpdateItemRequest{ID: "missing", Title: ptr("x")})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeactivateItem_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	item := testutil.CreateItem(t, db)

	first, err := svc.DeactivateItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, first.IsActive)

	second, err := svc.DeactivateItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, second.IsActive)

	var stored models.ChecklistItem
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.False(t, stored.IsActive)

	_, err = svc.DeactivateItem(ctx, "never-existed")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetActiveItem(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()
	active := testutil.CreateItem(t, db)
	hidden := testutil.CreateItem(t, db, testutil.Inactive())

	got, err := svc.GetActiveItem(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Title, got.Title)

	_, err = svc.GetActiveItem(ctx, hidden.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCountActiveByDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)

	a := testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(1))
	b := testutil.CreateItem(t, db, testutil.WithDay(1), testutil.WithOrder(0))
	c := testutil.CreateItem(t, db, testutil.WithDay(3))
	testutil.CreateItem(t, db, testutil.WithDay(2), testutil.Inactive())

	counts, err := svc.CountActiveByDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.DayCount{
		{Day: 1, Count: 2, ItemIDs: []string{b.ID, a.ID}},
		{Day: 3, Count: 1, ItemIDs: []string{c.ID}},
	}, counts)
}

func TestTitlesByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewCatalogService(db)
	item := testutil.CreateItem(t, db, testutil.WithTitle("VPN"))

	titles, err := svc.TitlesByID(context.Background(), []string{item.ID, "gone"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{item.ID: "VPN"}, titles)

	empty, err := svc.TitlesByID(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
