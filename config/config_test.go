package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poemCrew = `
provider: groq
completion_timeout: 30s
agents:
  - name: Poet Agent
    backstory: You are a well-known poet.
    task: Write a poem about the meaning of life
  - name: Poem Translator Agent
    backstory: You are an expert translator.
    task: Translate a poem into Spanish
    depends_on: [Poet Agent]
  - name: Writer Agent
    backstory: You love writing poems into txt files.
    task: Write the poem into './poem.txt'
    tools: [write_str_to_txt]
    depends_on: [Poem Translator Agent]
`

func TestDefaults(t *testing.T) {
	cfg := defaults()

	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.Empty(t, cfg.Model)
	assert.Equal(t, 20, cfg.MaxIterations)
	assert.Equal(t, 60*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Parse([]byte(poemCrew))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model)
	assert.Equal(t, "gsk-test", cfg.APIKey)
	require.Len(t, cfg.Agents, 3)
	assert.Equal(t, []string{"write_str_to_txt"}, cfg.Agents[2].Tools)
	assert.Equal(t, []string{"Poem Translator Agent"}, cfg.Agents[2].DependsOn)
}

func TestParse_ExpandsEnvAndOverrides(t *testing.T) {
	t.Setenv("POET_STYLE", "haiku")
	t.Setenv("AGENTCREW_PROVIDER", "OpenAI")
	t.Setenv("AGENTCREW_MAX_ITERATIONS", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Parse([]byte(`
agents:
  - name: Poet
    task: Write a ${POET_STYLE}
`))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, "Write a haiku", cfg.Agents[0].Task)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown provider", "provider: ollama\nagents: [{name: a}]", "unknown provider"},
		{"no agents", "provider: groq", "no agents"},
		{"unnamed agent", "agents: [{task: x}]", "has no name"},
		{"duplicate", "agents: [{name: a}, {name: a}]", "duplicate agent name"},
		{"unknown dependency", "agents: [{name: a, depends_on: [b]}]", "unknown agent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crew.yaml")
	require.NoError(t, os.WriteFile(path, []byte(poemCrew), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Agents, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AGENTCREW_TEST_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AGENTCREW_TEST_KEY") })

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("AGENTCREW_TEST_KEY"))
}
