package optional

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	t.Parallel()

	some := Some("value")
	require.True(t, some.IsPresent())
	require.Equal(t, "value", some.Value())

	none := None[string]()
	require.NotEqual(t, some, none)
	require.False(t, none.IsPresent())
	require.Equal(t, "", none.Value())
}
