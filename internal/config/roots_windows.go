// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package config

import (
	"path/filepath"
)

// DefaultDirs lists the directories searched for a configuration file.
func DefaultDirs(lookup func(string) (string, bool)) []string {
	userprofile, _ := lookup("USERPROFILE")
	systemdrive, _ := lookup("SystemDrive")

	return []string{
		filepath.Join(userprofile, "AppData", "Local", "rjsonc"),
		filepath.Join(systemdrive, "ProgramData", "rjsonc"),
	}
}
