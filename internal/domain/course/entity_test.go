package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Course{ID: 1, Title: "old", Description: "desc", Type: TypeMembership, CreatedAt: created, UpdatedAt: created}

	title := "new"
	typ := TypeMaster
	now := created.Add(time.Hour)
	Patch{Title: &title, Type: &typ}.Apply(c, now)

	assert.Equal(t, "new", c.Title)
	assert.Equal(t, "desc", c.Description)
	assert.Equal(t, TypeMaster, c.Type)
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, now, c.UpdatedAt)
}

func TestCourse_Matches(t *testing.T) {
	c := &Course{Title: "React 마스터", Description: "Hooks and State"}

	assert.True(t, c.Matches(""))
	assert.True(t, c.Matches("react"))
	assert.True(t, c.Matches("  HOOKS "))
	assert.True(t, c.Matches("마스터"))
	assert.False(t, c.Matches("vue"))
}

func TestCourse_CloneIsIndependent(t *testing.T) {
	c := &Course{ID: 2, Title: "a"}
	cp := c.Clone()
	cp.Title = "b"

	assert.Equal(t, "a", c.Title)
	assert.Nil(t, (*Course)(nil).Clone())
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeMaster.IsValid())
	assert.True(t, TypeMembership.IsValid())
	assert.False(t, Type("free").IsValid())
}
