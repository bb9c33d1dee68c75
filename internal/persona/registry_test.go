package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"generic", "twin"}, r.IDs())

	twin, err := r.Resolve("twin")
	require.NoError(t, err)
	assert.True(t, twin.UsesRetrieval)
	assert.Contains(t, twin.PromptTemplate, "{input}")
	assert.Contains(t, twin.PromptTemplate, "{history}")

	generic, err := r.Resolve("generic")
	require.NoError(t, err)
	assert.False(t, generic.UsesRetrieval)
	assert.NotEmpty(t, generic.ToolPrefix)
}

func TestResolve(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.Resolve("  Satya Nadella twin ")
	require.NoError(t, err)
	assert.Equal(t, "twin", p.ID)

	p, err = r.Resolve("GENERIC")
	require.NoError(t, err)
	assert.Equal(t, "Generic Assistant", p.DisplayName)

	_, err = r.Resolve("oracle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIsACopy(t *testing.T) {
	r := DefaultRegistry()
	list := r.List()
	list[0].DisplayName = "mutated"

	p, err := r.Resolve("generic")
	require.NoError(t, err)
	assert.Equal(t, "Generic Assistant", p.DisplayName)
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	_, err := NewRegistry()
	assert.Error(t, err)

	_, err = NewRegistry(Persona{ID: "a", PromptTemplate: "x"}, Persona{ID: "A", PromptTemplate: "y"})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry(Persona{ID: "a"})
	assert.ErrorContains(t, err, "prompt template")

	_, err = NewRegistry(Persona{ID: " ", PromptTemplate: "x"})
	assert.ErrorContains(t, err, "id cannot be empty")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	doc := `personas:
  - id: coach
    display_name: Career Coach
    prompt_template: "Coach the user.\n{history}\nUser: {input}"
    tool_prefix: You are a career coach.
  - id: historian
    prompt_template: "{input}"
    uses_retrieval: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Career Coach", list[0].DisplayName)
	assert.Equal(t, "historian", list[1].DisplayName, "display name defaults to id")
	assert.True(t, list[1].UsesRetrieval)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personas: [ {id: x"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
