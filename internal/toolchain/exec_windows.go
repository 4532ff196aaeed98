//go:build windows

package toolchain

import "os"

// isExecutable reports whether path is a regular file. Windows has no
// execute bit; candidates already carry the .exe suffix.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
