package toolchain

import (
	"path/filepath"
	"runtime"

	ierrors "github.com/five82/icecale/internal/errors"
)

// Locator resolves a collaborator name to an executable path.
type Locator interface {
	Locate(name string) (string, error)
}

// Candidates returns the ordered paths searched for name under base.
func Candidates(base, name string) []string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return []string{
		filepath.Join(base, name),
		filepath.Join(base, "bin", name),
		filepath.Join(base, "third_party", trimExe(name), name),
		filepath.Join(base, "third_party", "bin", name),
	}
}

func trimExe(name string) string {
	if ext := filepath.Ext(name); ext == ".exe" {
		return name[:len(name)-len(ext)]
	}
	return name
}

// DirLocator searches a fixed set of locations relative to BaseDir,
// normally the directory of the running executable.
type DirLocator struct {
	BaseDir string
}

// Locate returns the first candidate that is an executable regular file.
func (l DirLocator) Locate(name string) (string, error) {
	candidates := Candidates(l.BaseDir, name)
	for _, path := range candidates {
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", ierrors.NewToolNotFoundError(name, candidates)
}

// EnvLocator looks only inside Dir, typically taken from ICECALE_TOOLS_DIR.
// An empty Dir never matches.
type EnvLocator struct {
	Dir string
}

// Locate implements Locator.
func (l EnvLocator) Locate(name string) (string, error) {
	if l.Dir == "" {
		return "", ierrors.NewToolNotFoundError(name, nil)
	}
	path := filepath.Join(l.Dir, name)
	if runtime.GOOS == "windows" {
		path += ".exe"
	}
	if isExecutable(path) {
		return path, nil
	}
	return "", ierrors.NewToolNotFoundError(name, []string{path})
}

// ChainLocator tries each locator in order and returns the first match.
type ChainLocator []Locator

// Locate implements Locator.
func (c ChainLocator) Locate(name string) (string, error) {
	var searched []string
	for _, l := range c {
		path, err := l.Locate(name)
		if err == nil {
			return path, nil
		}
		if dl, ok := l.(DirLocator); ok {
			searched = append(searched, Candidates(dl.BaseDir, name)...)
		} else if el, ok := l.(EnvLocator); ok && el.Dir != "" {
			searched = append(searched, filepath.Join(el.Dir, name))
		}
	}
	return "", ierrors.NewToolNotFoundError(name, searched)
}

// NewLocator builds the default search order: toolsDir first when set,
// then the locations beside the executable.
func NewLocator(toolsDir, exeDir string) Locator {
	var chain ChainLocator
	if toolsDir != "" {
		chain = append(chain, EnvLocator{Dir: toolsDir})
	}
	return append(chain, DirLocator{BaseDir: exeDir})
}
