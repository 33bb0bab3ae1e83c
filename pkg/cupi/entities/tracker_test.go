package entities

import (
	"testing"

	"github.com/matryer/is"
)

func TestMarkingTheSameFieldTwiceKeepsOneEntry(t *testing.T) {
	is := is.New(t)
	ct := NewChangeTracker()

	ct.MarkDirty("DisplayName")
	ct.MarkDirty("DisplayName")

	is.Equal(ct.Count(), 1)
	is.True(ct.Dirty("DisplayName"))
}

func TestClearFieldsLeavesOthersDirty(t *testing.T) {
	is := is.New(t)
	ct := NewChangeTracker()

	ct.MarkDirty("B")
	ct.MarkDirty("A")
	ct.MarkDirty("C")
	is.Equal(ct.DirtyFields(), []string{"A", "B", "C"})

	ct.ClearFields("A", "C")
	is.Equal(ct.DirtyFields(), []string{"B"})

	ct.Clear()
	is.True(!ct.HasChanges())
}
