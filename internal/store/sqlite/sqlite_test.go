package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"food-manager/internal/core/food"
	"food-manager/internal/core/lifecycle"
	"food-manager/internal/core/model"
	"food-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)

func setupTestStore(t *testing.T) food.Repositories {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	repos := s.Repositories()
	t.Cleanup(func() { repos.Close() })
	return repos
}

func newItem(id string, created time.Time) *model.FoodItem {
	emoji := "🥛"
	return &model.FoodItem{
		ID:               id,
		Name:             "Milk " + id,
		Category:         model.CategoryDairy,
		Quantity:         1.5,
		Unit:             "liter",
		StorageCondition: model.StorageRefrigerated,
		PurchaseDate:     created,
		ExpirationDate:   created.AddDate(0, 0, 5),
		ShelfLifeDays:    5,
		CurrentState:     model.DefaultState,
		Emoji:            &emoji,
		CreatedAt:        created,
	}
}

func TestItemCRUD(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()

	item := newItem("a", base)
	require.NoError(t, repos.Items.Create(ctx, item))

	got, err := repos.Items.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, item, got)

	notes := "opened"
	got.Notes = &notes
	got.Emoji = nil
	got.Quantity = 0
	require.NoError(t, repos.Items.Update(ctx, got))

	again, err := repos.Items.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, again.Notes)
	assert.Equal(t, "opened", *again.Notes)
	assert.Nil(t, again.Emoji)
	assert.Zero(t, again.Quantity)

	require.NoError(t, repos.Items.Delete(ctx, "a"))
	_, err = repos.Items.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
	assert.ErrorIs(t, repos.Items.Delete(ctx, "a"), common.ErrRecordNotFound)
	assert.ErrorIs(t, repos.Items.Update(ctx, item), common.ErrRecordNotFound)
}

func TestItemZeroExpirationRoundTrip(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()

	item := newItem("a", base)
	item.ExpirationDate = time.Time{}
	require.NoError(t, repos.Items.Create(ctx, item))

	got, err := repos.Items.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.ExpirationDate.IsZero())
}

func TestItemListNewestFirst(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, repos.Items.Create(ctx, newItem("old", base)))
	require.NoError(t, repos.Items.Create(ctx, newItem("new", base.Add(time.Hour))))
	require.NoError(t, repos.Items.Create(ctx, newItem("mid", base.Add(time.Minute))))

	items, err := repos.Items.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "new", items[0].ID)
	assert.Equal(t, "mid", items[1].ID)
	assert.Equal(t, "old", items[2].ID)
}

func TestEventsOrderingAndWindow(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, repos.Items.Create(ctx, newItem("a", base)))

	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
	plan := lifecycle.Schedule("a", "Milk", base.AddDate(0, 0, 5), base, idGen)
	require.NoError(t, repos.Events.InsertMany(ctx, plan.Events))

	events, err := repos.Events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, plan.Events, events)

	from := base.AddDate(0, 0, 2)
	due, err := repos.Events.ListBetween(ctx, from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.EventWarning, due[0].EventType)

	// 上下界皆包含
	due, err = repos.Events.ListBetween(ctx, base, from)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.EventWarning, due[0].EventType)

	due, err = repos.Events.ListBetween(ctx, base, from.Add(-time.Second))
	require.NoError(t, err)
	assert.Empty(t, due)

	removed, err := repos.Events.DeleteByItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestNotifications(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, repos.Items.Create(ctx, newItem("a", base)))

	r, _ := lifecycle.ReminderFor(model.EventUrgent)
	first := lifecycle.NewNotification("a", "Milk", r, base, func() string { return "n1" })
	second := lifecycle.NewNotification("a", "Milk", r, base, func() string { return "n2" })
	require.NoError(t, repos.Notifications.Insert(ctx, &first))
	require.NoError(t, repos.Notifications.Insert(ctx, &second))

	list, err := repos.Notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)

	count, err := repos.Notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repos.Notifications.MarkRead(ctx, "n1"))
	count, err = repos.Notifications.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.ErrorIs(t, repos.Notifications.MarkRead(ctx, "missing"), common.ErrRecordNotFound)

	exists, err := repos.Notifications.Exists(ctx, "a", model.EventUrgent)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repos.Notifications.Exists(ctx, "a", model.EventWarning)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeletingItemCascades(t *testing.T) {
	repos := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, repos.Items.Create(ctx, newItem("a", base)))

	plan := lifecycle.Schedule("a", "Milk", base.AddDate(0, 0, 1), base, common.GenerateUUID)
	require.NoError(t, repos.Events.InsertMany(ctx, plan.Events))
	for i := range plan.Notifications {
		require.NoError(t, repos.Notifications.Insert(ctx, &plan.Notifications[i]))
	}

	require.NoError(t, repos.Items.Delete(ctx, "a"))

	events, err := repos.Events.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
	list, err := repos.Notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
