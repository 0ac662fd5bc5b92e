// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirs lists the directories searched for a configuration file: the
// XDG user configuration directory followed by the XDG system directories.
func DefaultDirs(lookup func(string) (string, bool)) []string {
	var dirs []string
	if home, ok := lookup("XDG_CONFIG_HOME"); ok && home != "" {
		dirs = append(dirs, filepath.Join(home, "rjsonc"))
	} else if home, ok := lookup("HOME"); ok && home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", "rjsonc"))
	}
	xdgDirs, ok := lookup("XDG_CONFIG_DIRS")
	if !ok || xdgDirs == "" {
		xdgDirs = "/etc/xdg"
	}
	for _, configDir := range strings.Split(xdgDirs, ":") {
		p := filepath.Join(configDir, "rjsonc")
		p = os.Expand(p, func(s string) string {
			v, _ := lookup(s)
			return v
		})
		dirs = append(dirs, p)
	}
	return dirs
}
