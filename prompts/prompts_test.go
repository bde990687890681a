package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Contains(t, p.CoderSystem, "```python")
	assert.Contains(t, p.CoderSystem, "timeout")
	assert.Contains(t, p.AuditorSystem, "APPROVED")
	assert.Contains(t, p.AuditorSystem, "REJECTED")
	assert.Contains(t, p.SecurityCorrection, "SECURITY AUDIT FAILED")
	assert.Contains(t, p.RuntimeCorrection, "RUNTIME CRASH LOG")
}

func TestCoderRendersTimeout(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Contains(t, p.Coder(60), "within 60 seconds")
	assert.NotContains(t, p.Coder(60), "%d")
}

func TestParse(t *testing.T) {
	t.Run("MissingPrompt", func(t *testing.T) {
		_, err := Parse([]byte("coder_system: hi\nauditor_system: hi\nsecurity_correction: \"%s\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "runtime_correction")
	})

	t.Run("MissingPlaceholder", func(t *testing.T) {
		_, err := Parse([]byte("coder_system: a\nauditor_system: b\nsecurity_correction: c\nruntime_correction: \"%s\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "security_correction must contain exactly one")
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		_, err := Parse([]byte("coder_system: [unterminated"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal prompt catalog")
	})

	t.Run("StaticCoderPrompt", func(t *testing.T) {
		p, err := Parse([]byte("coder_system: just code\nauditor_system: b\nsecurity_correction: \"%s\"\nruntime_correction: \"%s\"\n"))
		require.NoError(t, err)
		assert.Equal(t, "just code", p.Coder(60))
	})
}
