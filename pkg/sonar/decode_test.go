package sonar_test

import (
	"testing"

	"github.com/effective-security/sonarmcp/pkg/sonar"
	"github.com/effective-security/sonarmcp/pkg/toolerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("invalid", func(t *testing.T) {
		_, err := sonar.Decode([]byte("<html>oops</html>"))
		require.Error(t, err)
		assert.Equal(t, toolerr.UpstreamError, toolerr.CodeOf(err))

		_, err = sonar.Decode([]byte(`["not","an","object"]`))
		require.Error(t, err)
		assert.Equal(t, toolerr.UpstreamError, toolerr.CodeOf(err))
	})

	t.Run("empty_object", func(t *testing.T) {
		res, err := sonar.Decode([]byte(`{}`))
		require.NoError(t, err)
		assert.Nil(t, res.Content)
		assert.Nil(t, res.Usage)
		assert.Nil(t, res.Citations)
		assert.Equal(t, []string{"content", "usage"}, res.Missing)
	})

	t.Run("citations_objects", func(t *testing.T) {
		body, err := sjson.Set(okResponse, "citations", []map[string]string{
			{"url": "https://x"},
			{"url": ""},
			{"url": "https://y"},
		})
		require.NoError(t, err)

		res, err := sonar.Decode([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://x", "", "https://y"}, res.Citations)
		assert.Equal(t, []string{"citations"}, res.Missing)
	})

	t.Run("citations_strings", func(t *testing.T) {
		body, err := sjson.Set(okResponse, "citations", []string{"https://x", "https://y"})
		require.NoError(t, err)

		res, err := sonar.Decode([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, []string{"https://x", "https://y"}, res.Citations)
		assert.Empty(t, res.Missing)
	})

	t.Run("usage_without_tokens", func(t *testing.T) {
		body, err := sjson.Delete(okResponse, "usage.completion_tokens")
		require.NoError(t, err)

		res, err := sonar.Decode([]byte(body))
		require.NoError(t, err)
		assert.Nil(t, res.Usage)
		assert.Equal(t, []string{"usage"}, res.Missing)
	})

	t.Run("numeric_cost_and_total", func(t *testing.T) {
		body, err := sjson.Set(okResponse, "usage.cost", 0.5)
		require.NoError(t, err)
		body, err = sjson.Delete(body, "usage.total_tokens")
		require.NoError(t, err)

		res, err := sonar.Decode([]byte(body))
		require.NoError(t, err)
		require.NotNil(t, res.Usage)
		require.NotNil(t, res.Usage.ReportedCost)
		assert.Equal(t, 0.5, *res.Usage.ReportedCost)
		assert.Equal(t, int64(250), res.Usage.TotalTokens)
	})

	t.Run("content_not_string", func(t *testing.T) {
		body, err := sjson.Set(okResponse, "choices.0.message.content", nil)
		require.NoError(t, err)

		res, err := sonar.Decode([]byte(body))
		require.NoError(t, err)
		assert.Nil(t, res.Content)
		assert.Equal(t, []string{"content"}, res.Missing)
	})
}
