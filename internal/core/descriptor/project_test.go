package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FromDocument Tests
// =============================================================================

func TestFromDocument_Minimal(t *testing.T) {
	doc := Document{"image": "internal-registry.company.com/app:v1", "name": "web-1"}

	d, warnings, err := FromDocument(doc)
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, "internal-registry.company.com/app:v1", d.Image)
	assert.Equal(t, "web-1", d.Name)
	assert.NotNil(t, d.Environment)
	assert.Empty(t, d.Volumes)
	assert.Empty(t, d.Ports)
	assert.Nil(t, d.Args)
}

func TestFromDocument_FullYAML(t *testing.T) {
	doc, err := Decode("web.yaml", []byte(webYAML))
	require.NoError(t, err)

	d, warnings, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	require.Len(t, d.Volumes, 2)
	assert.Equal(t, "/srv/data:/data", d.Volumes[0].Spec())
	assert.False(t, d.Volumes[0].IsPair)
	assert.Equal(t, "/srv/logs:/var/log/app", d.Volumes[1].Spec())
	assert.True(t, d.Volumes[1].IsPair)

	require.Len(t, d.Ports, 1)
	assert.Equal(t, "8080:80", d.Ports[0].Spec())
}

func TestFromDocument_SkipsUnusableMounts(t *testing.T) {
	doc := Document{
		"image": "x",
		"name":  "y",
		"volumes": []any{
			"/a:/a",
			map[string]any{"host": "/b"},
			42,
		},
		"ports": []any{map[string]any{"container": 80}},
	}

	d, warnings, err := FromDocument(doc)
	require.NoError(t, err)

	require.Len(t, d.Volumes, 1)
	assert.Equal(t, "/a:/a", d.Volumes[0].Spec())
	assert.Empty(t, d.Ports)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "volumes[1]")
	assert.Contains(t, warnings[1], "volumes[2]")
	assert.Contains(t, warnings[2], "ports[0]")
}

func TestFromDocument_SkipsPairsWithNullSide(t *testing.T) {
	doc := Document{
		"image": "x",
		"name":  "y",
		"volumes": []any{
			map[string]any{"host": nil, "container": "/x"},
			map[string]any{"host": "/a", "container": "/a"},
		},
		"ports": []any{map[string]any{"host": 8080, "container": nil}},
	}

	d, warnings, err := FromDocument(doc)
	require.NoError(t, err)

	require.Len(t, d.Volumes, 1)
	assert.Equal(t, "/a:/a", d.Volumes[0].Spec())
	assert.Empty(t, d.Ports)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "volumes[0] skipped")
	assert.Contains(t, warnings[1], "ports[0] skipped")
}

func TestFromDocument_NullOptionalFields(t *testing.T) {
	doc := Document{"image": "x", "name": "y", "environment": nil, "volumes": nil, "args": nil}

	d, _, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Empty(t, d.Environment)
	assert.Nil(t, d.Args)
}

func TestFromDocument_MalformedFields(t *testing.T) {
	tests := []struct {
		name  string
		doc   Document
		field string
	}{
		{"image not string", Document{"image": 1, "name": "y"}, "image"},
		{"name not string", Document{"image": "x", "name": []any{"y"}}, "name"},
		{"environment list", Document{"image": "x", "name": "y", "environment": []any{"A=1"}}, "environment"},
		{"volumes string", Document{"image": "x", "name": "y", "volumes": "/a:/a"}, "volumes"},
		{"ports mapping", Document{"image": "x", "name": "y", "ports": map[string]any{"host": 1}}, "ports"},
		{"args string", Document{"image": "x", "name": "y", "args": "--rm"}, "args"},
		{"args element", Document{"image": "x", "name": "y", "args": []any{"ok", 3}}, "args[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FromDocument(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedField)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestFromDocument_Args(t *testing.T) {
	doc := Document{"image": "x", "name": "y", "args": []any{"--flag", "value with spaces"}}

	d, _, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"--flag", "value with spaces"}, d.Args)
}

func TestMount_Spec(t *testing.T) {
	assert.Equal(t, "/x:/y:ro", Mount{Raw: "/x:/y:ro"}.Spec())
	assert.Equal(t, "1:2", Mount{Host: "1", Container: "2", IsPair: true}.Spec())
}
