//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDirs(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"XDG_CONFIG_HOME": "/home/u/.cfg",
		"XDG_CONFIG_DIRS": "/etc/xdg:$SITE/conf",
		"SITE":            "/opt/site",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	require.Equal(t, []string{"/home/u/.cfg/rjsonc", "/etc/xdg/rjsonc", "/opt/site/conf/rjsonc"}, DefaultDirs(lookup))

	home := func(k string) (string, bool) {
		if k == "HOME" {
			return "/home/u", true
		}
		return "", false
	}
	require.Equal(t, []string{"/home/u/.config/rjsonc", "/etc/xdg/rjsonc"}, DefaultDirs(home))
}
