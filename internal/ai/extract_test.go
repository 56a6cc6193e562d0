package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const descriptorJSON = `{
	"projectName": "todo-api",
	"description": "A todo API",
	"technology": "Node.js",
	"framework": "Express",
	"database": "SQLite",
	"fileTree": {
		"src/": {"type": "directory"},
		"src/index.js": {"type": "file", "content": "console.log('hi')"}
	}
}`

func TestExtractProjectJSON_JSONFence(t *testing.T) {
	raw := "Here is your project:\n```json\n" + descriptorJSON + "\n```\nEnjoy!"
	desc, err := ExtractProjectJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "todo-api", desc.ProjectName)
	assert.Len(t, desc.FileTree, 2)
	assert.True(t, desc.FileTree["src/"].IsDirectory())
	assert.Equal(t, "console.log('hi')", desc.FileTree["src/index.js"].Content)
}

func TestExtractProjectJSON_UntaggedFence(t *testing.T) {
	raw := "```\n" + descriptorJSON + "\n```"
	desc, err := ExtractProjectJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "todo-api", desc.ProjectName)
}

func TestExtractProjectJSON_JSONFencePreferredOverEarlierFence(t *testing.T) {
	raw := "```js\nnot json at all\n```\n```json\n" + descriptorJSON + "\n```"
	desc, err := ExtractProjectJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "todo-api", desc.ProjectName)
}

func TestExtractProjectJSON_BareBraces(t *testing.T) {
	raw := "Sure thing! " + descriptorJSON + " Let me know if you need more."
	desc, err := ExtractProjectJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "todo-api", desc.ProjectName)
}

func TestExtractProjectJSON_FencedAndUnfencedAgree(t *testing.T) {
	fenced, err := ExtractProjectJSON("```json\n" + descriptorJSON + "\n```")
	require.NoError(t, err)
	bare, err := ExtractProjectJSON(descriptorJSON)
	require.NoError(t, err)
	assert.Equal(t, fenced, bare)
}

func TestExtractProjectJSON_NoJSON(t *testing.T) {
	_, err := ExtractProjectJSON("I could not generate a project for that prompt.")
	require.Error(t, err)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Snippet, "could not generate")
}

func TestExtractProjectJSON_InvalidJSONCarriesSnippet(t *testing.T) {
	_, err := ExtractProjectJSON("{this is not json}")
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Snippet, "this is not json")
}

func TestExtractProjectJSON_GreedyTrailingBrace(t *testing.T) {
	// The bare-brace fallback spans from the first '{' to the LAST '}',
	// so trailing prose with a brace poisons the candidate. Documented
	// limitation: this must fail as malformed, not succeed.
	raw := descriptorJSON + "\nP.S. in Go you write func main() {}"
	_, err := ExtractProjectJSON(raw)
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestExtractCodeBlock(t *testing.T) {
	assert.Equal(t, "const x = 1\n", ExtractCodeBlock("```js\nconst x = 1\n```"))
	assert.Equal(t, "plain text\n", ExtractCodeBlock("  plain text  "))
}
