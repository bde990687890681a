package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/nexus/config"
	"github.com/isdmx/nexus/llm"
	"github.com/isdmx/nexus/models"
	"github.com/isdmx/nexus/prompts"
)

// MockClient implements llm.Client for testing
type MockClient struct {
	requests []llm.Request
	response string
	err      error
}

func (m *MockClient) Complete(_ context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

func newTestGenerator(t *testing.T, client llm.Client) *Generator {
	t.Helper()
	p, err := prompts.Load()
	require.NoError(t, err)
	cfg := &config.Config{
		LLM:     config.LLMConfig{CoderTemperature: 0.6},
		Sandbox: config.SandboxConfig{TimeoutSec: 60},
	}
	return New(zaptest.NewLogger(t), cfg, client, p)
}

func TestExtractCode(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"PythonFence", "Here you go:\n```python\nprint(120)\n```\nEnjoy!", "print(120)"},
		{"Python3Fence", "```python3\nimport math\nprint(math.factorial(5))\n```", "import math\nprint(math.factorial(5))"},
		{"PyFence", "```py\nx = 1\n```", "x = 1"},
		{"BareFence", "```\nprint('hi')\n```", "print('hi')"},
		{"PythonBlockBeatsEarlierBashBlock", "Install first:\n```bash\npip install requests\n```\nThen:\n```python\nprint(120)\n```", "print(120)"},
		{"PythonBlockBeatsEarlierBareBlock", "```\n$ python solution.py\n```\n```py\nprint(1)\n```", "print(1)"},
		{"BareBlockBeatsOtherTag", "```sh\necho hi\n```\n```\nprint('hi')\n```", "print('hi')"},
		{"OnlyOtherTagFallsBack", "```sh\necho hi\n```", "echo hi"},
		{"TagIsCaseInsensitive", "```Python\nprint(2)\n```", "print(2)"},
		{"CRLFFence", "```python\r\nprint(3)\r\n```", "print(3)"},
		{"OneLineFence", "```print(1)```", "print(1)"},
		{"FirstBlockWins", "```python\nfirst()\n```\ntext\n```python\nsecond()\n```", "first()"},
		{"NoFence", "  print(5)  \n", "print(5)"},
		{"UnclosedFence", "```python\nprint(5)\n", "print(5)"},
		{"EmptyBlockFallsBack", "```python\n```\nprint(7)", "print(7)"},
		{"EmptyResponse", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractCode(tc.raw))
		})
	}
}

func TestConversation(t *testing.T) {
	g := newTestGenerator(t, &MockClient{})

	t.Run("EmptyHistory", func(t *testing.T) {
		msgs := g.Conversation("compute factorial of 5", nil)
		require.Len(t, msgs, 2)
		assert.Equal(t, llm.RoleSystem, msgs[0].Role)
		assert.Contains(t, msgs[0].Content, "within 60 seconds")
		assert.Equal(t, llm.RoleUser, msgs[1].Role)
		assert.Equal(t, "Task: compute factorial of 5", msgs[1].Content)
	})

	t.Run("HistoryReplayedInOrder", func(t *testing.T) {
		history := []models.Attempt{
			{Code: "os.system(x)", Outcome: models.OutcomeSecurityRejected, Feedback: "command injection"},
			{Code: "while True: pass", Outcome: models.OutcomeRuntimeFailed, Feedback: "timed out"},
		}

		msgs := g.Conversation("task", history)
		require.Len(t, msgs, 6)

		assert.Equal(t, llm.RoleAssistant, msgs[2].Role)
		assert.Equal(t, "os.system(x)", msgs[2].Content)
		assert.Equal(t, llm.RoleUser, msgs[3].Role)
		assert.Equal(t, "SECURITY AUDIT FAILED: command injection\nFix the vulnerabilities immediately.", msgs[3].Content)

		assert.Equal(t, llm.RoleAssistant, msgs[4].Role)
		assert.Equal(t, "while True: pass", msgs[4].Content)
		assert.Equal(t, llm.RoleUser, msgs[5].Role)
		assert.Equal(t, "RUNTIME CRASH LOG: timed out\nAnalyze the error and rewrite the code to fix it.", msgs[5].Content)
	})

	t.Run("FeedbackKeptVerbatim", func(t *testing.T) {
		feedback := "Traceback (most recent call last):\n  File \"solution.py\", line 1\nZeroDivisionError: 100% broken"
		msgs := g.Conversation("task", []models.Attempt{
			{Code: "1/0", Outcome: models.OutcomeRuntimeFailed, Feedback: feedback},
		})
		assert.Contains(t, msgs[3].Content, feedback)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("ExtractsCode", func(t *testing.T) {
		client := &MockClient{response: "```python\nprint(120)\n```"}
		g := newTestGenerator(t, client)

		code, err := g.Generate(context.Background(), "compute factorial of 5", nil)
		require.NoError(t, err)
		assert.Equal(t, "print(120)", code)

		require.Len(t, client.requests, 1)
		assert.InDelta(t, 0.6, client.requests[0].Temperature, 0.0001)
		assert.False(t, client.requests[0].JSONMode)
	})

	t.Run("PropagatesTransportError", func(t *testing.T) {
		client := &MockClient{err: llm.ErrUnavailable}
		g := newTestGenerator(t, client)

		_, err := g.Generate(context.Background(), "task", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, llm.ErrUnavailable))
		assert.Len(t, client.requests, 1, "generator must not retry")
	})
}
