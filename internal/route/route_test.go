package route

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lookup(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table, err := NewTable(DefaultDescriptors())
	require.Nil(err)

	tests := []struct {
		path string
		name string
	}{
		{"/", "home"},
		{"", "home"},
		{"/about", "about"},
		{"/account/signin", "signin"},
		{"/account", "account"},
		{"/paste/view/0b9e6f", "paste-view"},
		{"/paste/edit/0b9e6f", "paste-edit"},
	}
	for _, tt := range tests {
		d, ok := table.Lookup(tt.path)
		if assert.True(ok, tt.path) {
			assert.Equal(tt.name, d.Name, tt.path)
		}
	}

	_, ok := table.Lookup("/nope")
	assert.False(ok)
	_, ok = table.Lookup("/paste/view")
	assert.False(ok)
}

func Test_LookupKeepsMeta(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table, err := NewTable([]Descriptor{
		{Name: "secret", Path: "/secret", Meta: Meta{RequiresAuth: Bool(true)}},
		{Name: "open", Path: "/open"},
	})
	require.Nil(err)

	d, ok := table.Lookup("/secret")
	require.True(ok)
	require.NotNil(d.Meta.RequiresAuth)
	assert.True(*d.Meta.RequiresAuth)

	d, ok = table.Lookup("/open")
	require.True(ok)
	assert.Nil(d.Meta.RequiresAuth)
}

func Test_NewTableRejects(t *testing.T) {
	assert := assert.New(t)

	_, err := NewTable([]Descriptor{{Path: "relative"}})
	assert.True(errors.Is(err, ErrInvalidPath))

	_, err = NewTable([]Descriptor{{Path: "/a"}, {Path: "/a"}})
	assert.True(errors.Is(err, ErrDuplicatePath))

	_, err = NewTable([]Descriptor{{Name: "x", Path: "/a"}, {Name: "x", Path: "/b"}})
	assert.True(errors.Is(err, ErrDuplicateName))
}

func Test_ByNameAndAll(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	table, err := NewTable(DefaultDescriptors())
	require.Nil(err)

	d, ok := table.ByName("paste-list")
	require.True(ok)
	assert.Equal("/paste/list", d.Path)

	all := table.All()
	assert.Len(all, len(DefaultDescriptors()))
	all[0].Path = "/mutated"
	assert.Equal("/", table.All()[0].Path)
}
