package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"name", "food"}, Placeholders("#name serves #food food. #name is nice"))
	assert.Empty(t, Placeholders("Hello, welcome to the restaurant system."))
}

func TestTemplateRender(t *testing.T) {
	t.Run("all slots resolved", func(t *testing.T) {
		tmpl := NewTemplate("inform_food", "#name serves #food food.", "")
		got := tmpl.Render(map[string]string{"name": "pizza hut", "food": "italian"})
		assert.Equal(t, "Pizza hut serves italian food.", got)
	})

	t.Run("unresolved placeholder stays literal", func(t *testing.T) {
		tmpl := NewTemplate("inform_food", "#name serves #food food.", "")
		got := tmpl.Render(map[string]string{"food": "italian"})
		assert.Equal(t, "#name serves italian food.", got)
	})

	t.Run("default text used when slots missing", func(t *testing.T) {
		tmpl := NewTemplate("inform_food", "#name serves #food food.", "Sorry, I don't know that.")
		assert.Equal(t, "Sorry, I don't know that.", tmpl.Render(nil))
	})

	t.Run("no slots", func(t *testing.T) {
		tmpl := NewTemplate("welcome", "hello, welcome!", "")
		assert.Empty(t, tmpl.Slots())
		assert.Equal(t, "Hello, welcome!", tmpl.Render(nil))
	})
}

func TestNewStore(t *testing.T) {
	t.Run("ordered actions", func(t *testing.T) {
		s, err := NewStore([]Template{
			NewTemplate("welcome", "Hello", ""),
			NewTemplate("bye", "Goodbye", ""),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []string{"welcome", "bye"}, s.Actions())
		i, ok := s.Index("bye")
		assert.True(t, ok)
		assert.Equal(t, 1, i)
	})

	t.Run("duplicate action", func(t *testing.T) {
		_, err := NewStore([]Template{NewTemplate("a", "x", ""), NewTemplate("a", "y", "")})
		assert.Error(t, err)
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := NewStore(nil)
		assert.Error(t, err)
	})

	t.Run("template literal without parse", func(t *testing.T) {
		s, err := NewStore([]Template{{Act: "ask_food", Text: "What #food?"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"food"}, s.At(0).Slots())
	})
}

func TestLoad(t *testing.T) {
	t.Run("tab separated", func(t *testing.T) {
		path := writeFile(t, "templates.txt",
			"welcomemsg\tHello, welcome to the Cambridge restaurant system.\n"+
				"inform_food\t#name serves #food food.\tI don't know.\n\n"+
				"bye\tYou are welcome!\n")

		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"welcomemsg", "inform_food", "bye"}, s.Actions())
		assert.Equal(t, "I don't know.", s.At(1).Default)
		assert.Equal(t, []string{"name", "food"}, s.At(1).Slots())
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "templates.yaml", `
- act: welcomemsg
  text: Hello!
- act: request_area
  text: What part of town do you have in mind?
- act: inform_area
  text: "#name is in the #area of town."
  default: It is in town.
`)
		s, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, []string{"name", "area"}, s.At(2).Slots())
	})

	t.Run("malformed line", func(t *testing.T) {
		path := writeFile(t, "bad.txt", "welcomemsg\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}
