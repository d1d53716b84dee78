package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, method := range List {
			assert.Equal(t, method, Parse(method.String()))
		}
	})

	t.Run("unknown", func(t *testing.T) {
		for _, str := range []string{"", "get", "PURGE", "GETS", "Post"} {
			require.Equal(t, Unknown, Parse(str), str)
		}

		require.Equal(t, "UNKNOWN", Method(200).String())
	})

	t.Run("expects body", func(t *testing.T) {
		require.True(t, POST.ExpectsBody())
		require.True(t, PATCH.ExpectsBody())
		require.False(t, GET.ExpectsBody())
		require.False(t, HEAD.ExpectsBody())
	})
}
