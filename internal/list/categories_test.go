package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/model"
)

func TestDefaultCategoriesAreFreshCopies(t *testing.T) {
	a := DefaultCategories()
	a[model.ListPharmacy][0] = "changed"

	b := DefaultCategories()
	assert.Equal(t, "Medicine", b[model.ListPharmacy][0])
	for _, lt := range model.ListTypes() {
		assert.NotEmpty(t, b[lt], "list type %s has no defaults", lt)
	}
}

func TestAddCategory(t *testing.T) {
	cats := []string{"Bakery"}

	got, err := AddCategory(cats, "  Frozen ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery", "Frozen"}, got)
	assert.Equal(t, []string{"Bakery"}, cats)

	_, err = AddCategory(got, "Frozen")
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	_, err = AddCategory(got, "   ")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestRemoveCategoryKeepsItems(t *testing.T) {
	cats := []string{"Bakery", "Dairy"}
	items := []model.Item{{ID: "1", Category: "Dairy", Quantity: 1}}

	got, ok := RemoveCategory(cats, "Dairy")
	require.True(t, ok)
	assert.Equal(t, []string{"Bakery"}, got)
	assert.Empty(t, UncheckedByCategory(items, got))

	restored, _ := AddCategory(got, "Dairy")
	assert.Len(t, UncheckedByCategory(items, restored), 1)

	_, ok = RemoveCategory(cats, "Nope")
	assert.False(t, ok)
}

func TestMoveCategory(t *testing.T) {
	cats := []string{"A", "B", "C", "D"}

	tests := []struct {
		from, to int
		want     []string
		ok       bool
	}{
		{0, 3, []string{"B", "C", "D", "A"}, true},
		{3, 0, []string{"D", "A", "B", "C"}, true},
		{1, 2, []string{"A", "C", "B", "D"}, true},
		{2, 2, cats, false},
		{-1, 2, cats, false},
		{0, 4, cats, false},
	}
	for _, tt := range tests {
		got, ok := MoveCategory(cats, tt.from, tt.to)
		assert.Equal(t, tt.ok, ok, "move %d->%d", tt.from, tt.to)
		assert.Equal(t, tt.want, got, "move %d->%d", tt.from, tt.to)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, cats)
}

func TestReplaceCategoriesTrimsAndDropsBlanks(t *testing.T) {
	got := ReplaceCategories([]string{" Produce", "", "Dairy ", "Dairy"})
	assert.Equal(t, []string{"Produce", "Dairy", "Dairy"}, got)
	assert.True(t, HasCategory(got, "Dairy"))
	assert.False(t, HasCategory(got, "Bakery"))
}
