package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoParser_Declarations(t *testing.T) {
	file := parseFixture(t, &GoParser{}, "sample.go")

	byName := make(map[string]*Decl)
	for _, d := range file.Decls {
		byName[d.Name] = d
	}

	t.Run("functions, structs and interfaces", func(t *testing.T) {
		require.Len(t, file.Decls, 5, "Config, Renderer, Build, validate, Run")
		assert.Equal(t, DeclClass, byName["Config"].Kind)
		assert.Equal(t, DeclClass, byName["Renderer"].Kind)
		assert.Equal(t, DeclFunction, byName["Build"].Kind)
		assert.Equal(t, DeclFunction, byName["validate"].Kind)
		assert.Equal(t, DeclFunction, byName["Run"].Kind)
	})

	t.Run("methods are not declarations", func(t *testing.T) {
		_, found := byName["Label"]
		assert.False(t, found)
	})

	t.Run("bare identifier call", func(t *testing.T) {
		build := byName["Build"]
		require.Len(t, build.Calls, 1)
		assert.Equal(t, "validate", build.Calls[0].Root)
		assert.Equal(t, 0, build.Calls[0].AttrDepth)
	})

	t.Run("package selector call", func(t *testing.T) {
		validate := byName["validate"]
		require.Len(t, validate.Calls, 1)
		c := validate.Calls[0]
		assert.Equal(t, "fmt.Println", c.Text)
		assert.Equal(t, "fmt", c.Root)
		assert.Equal(t, 1, c.AttrDepth)
		assert.False(t, c.RootIsLocal)
	})

	t.Run("selector on a local binding", func(t *testing.T) {
		run := byName["Run"]
		require.Len(t, run.Calls, 2)
		assert.Equal(t, "builderFor", run.Calls[0].Root)
		c := run.Calls[1]
		assert.Equal(t, "b.Assemble", c.Text)
		assert.Equal(t, "b", c.Root)
		assert.Equal(t, 1, c.AttrDepth)
		assert.True(t, c.RootIsLocal)
	})
}

func TestLanguageForExtension(t *testing.T) {
	assert.Equal(t, "python", LanguageForExtension(".py"))
	assert.Equal(t, "go", LanguageForExtension(".go"))
	assert.Empty(t, LanguageForExtension(".rs"))
}

func TestForLanguage_Unsupported(t *testing.T) {
	_, err := ForLanguage("cobol")
	assert.Error(t, err)
}
