package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.True(t, ValidVersion(c.Version()))
	assert.Greater(t, c.Len(), 0)

	// Every band in the shipped catalogue has questions.
	for _, b := range c.Bands() {
		assert.NotEmpty(t, c.BandQuestions(b.ID), "band %s", b.ID)
	}
}

func TestDefault_EightWeeksResolvesFirstWeeksBand(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	res, err := c.Resolve(Age{Months: 2, Weeks: 8})
	require.NoError(t, err)
	assert.Equal(t, BandWeeks, res.Band.Kind)
	assert.Len(t, res.Questions, 7)
}

func TestLoad_YAMLAndJSONAgree(t *testing.T) {
	yamlDoc := `
version: 0.1.0
bands:
  - {id: m6, kind: months, min: 6, max: 8}
questions:
  - {id: q1, band: m6, dimension: cognitivo, order: 1, text: "Olha?"}
`
	jsonDoc := `{"version":"0.1.0","bands":[{"id":"m6","kind":"months","min":6,"max":8}],
"questions":[{"id":"q1","band":"m6","dimension":"cognitivo","order":1,"text":"Olha?"}]}`

	fromYAML, err := Load(strings.NewReader(yamlDoc), FormatYAML)
	require.NoError(t, err)
	fromJSON, err := Load(strings.NewReader(jsonDoc), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, fromYAML.Bands(), fromJSON.Bands())
	assert.Equal(t, fromYAML.BandQuestions("m6"), fromJSON.BandQuestions("m6"))
}

func TestLoad_SchemaRejectsUnknownFields(t *testing.T) {
	doc := `
version: 0.1.0
bands:
  - {id: m6, kind: months, min: 6, max: 8, colour: blue}
questions: []
`
	_, err := Load(strings.NewReader(doc), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestLoad_SchemaRejectsBadKind(t *testing.T) {
	doc := `{"version":"0.1.0","bands":[{"id":"x","kind":"years","min":1,"max":2}],"questions":[]}`
	_, err := Load(strings.NewReader(doc), FormatJSON)
	require.Error(t, err)
}

func TestLoadFile_PicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.json")
	doc := `{"version":"0.2.0","bands":[{"id":"m6","kind":"months","min":6,"max":8}],
"questions":[{"id":"q1","band":"m6","dimension":"linguagem","order":1,"text":"Fala?"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", c.Version())
}
