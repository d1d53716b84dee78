package fetch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := newError(KindParse, ErrBadStatusLine)

	require.ErrorIs(t, err, ErrParse)
	require.ErrorIs(t, err, ErrBadStatusLine)
	require.False(t, errors.Is(err, ErrConnect))
	require.Equal(t, "fetch: parse: malformed status line", err.Error())
	require.Equal(t, "fetch: canceled", ErrCanceled.Error())

	wrapped := fmt.Errorf("request failed: %w", err)
	require.Equal(t, KindParse, KindOf(wrapped))
	require.ErrorIs(t, wrapped, ErrParse)
	require.Zero(t, KindOf(errors.New("unrelated")))

	for kind := KindBuild; kind <= KindCanceled; kind++ {
		require.NotEqual(t, "unknown", kind.String())
	}
}
