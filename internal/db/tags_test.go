package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
)

func TestTagCRUD(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)

	tag, err := store.CreateTag("Errand")
	require.NoError(t, err)
	require.Positive(t, tag.ID)

	got, err := store.GetTagByName("errand")
	require.NoError(t, err)
	require.Equal(t, tag.ID, got.ID)

	tag.Name = "Errands"
	require.NoError(t, store.UpdateTag(*tag))
	got, err = store.GetTag(tag.ID)
	require.NoError(t, err)
	require.Equal(t, "Errands", got.Name)

	_, err = store.CreateTag("Errands")
	require.ErrorIs(t, err, ErrQuery)
	require.Equal(t, ConstraintUnique, ConstraintOf(err))

	home, err := store.CreateTag("Home")
	require.NoError(t, err)
	tags, err := store.ListTags()
	require.NoError(t, err)
	require.Equal(t, []models.Tag{{ID: tag.ID, Name: "Errands"}, *home}, tags)

	require.NoError(t, store.DeleteTag(tag.ID))
	_, err = store.GetTag(tag.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.DeleteTag(tag.ID), ErrNotFound)
	require.ErrorIs(t, store.UpdateTag(*tag), ErrNotFound)

	count, err := store.TagCount()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestTaskTagAssociations(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)

	task, err := store.CreateTask(models.NewTask("pay rent"))
	require.NoError(t, err)
	money, err := store.CreateTag("money")
	require.NoError(t, err)
	monthly, err := store.CreateTag("monthly")
	require.NoError(t, err)

	require.NoError(t, store.AddTagToTask(task.ID, money.ID))
	require.NoError(t, store.AddTagToTask(task.ID, money.ID))
	require.NoError(t, store.AddTagToTask(task.ID, monthly.ID))

	tags, err := store.GetTaskTags(task.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	require.NoError(t, store.RemoveTagFromTask(task.ID, monthly.ID))
	got, err := store.GetTask(task.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"money"}, got.Tags)

	require.NoError(t, store.DeleteTag(money.ID))
	got, err = store.GetTask(task.ID)
	require.NoError(t, err)
	require.Empty(t, got.Tags)
}

func TestAddTagToMissingTask(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)
	tag, err := store.CreateTag("lost")
	require.NoError(t, err)

	err = store.AddTagToTask(12345, tag.ID)
	require.ErrorIs(t, err, ErrQuery)
	require.Equal(t, ConstraintForeignKey, ConstraintOf(err))
}

func TestSetTaskTagsReplaces(t *testing.T) {
	t.Parallel()

	store := newTestDB(t)

	task := models.NewTask("plan trip")
	task.Tags = []string{"travel", "summer"}
	created, err := store.CreateTask(task)
	require.NoError(t, err)
	require.Equal(t, []string{"summer", "travel"}, created.Tags)

	require.NoError(t, store.SetTaskTags(created.ID, []string{"travel", "booked"}))
	got, err := store.GetTask(created.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"booked", "travel"}, got.Tags)

	// unused tags are kept
	count, err := store.TagCount()
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
