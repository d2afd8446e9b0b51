package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const maxWalkDepth = 8

func exists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

func isRoot(dir string) bool {
	return exists(filepath.Join(dir, "go.mod")) || exists(filepath.Join(dir, ".git"))
}

// walkUp calls visit for dir and its parents until visit returns true, a
// module root has been visited or the depth limit is hit. It returns the last
// directory visited and whether that directory is a module root.
func walkUp(dir string, visit func(string) bool) (string, bool) {
	for i := 0; i < maxWalkDepth; i++ {
		if visit != nil && visit(dir) {
			return dir, isRoot(dir)
		}
		if isRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dir, false
}

func sourceDir() (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	return filepath.Dir(file), true
}

// ProjectRoot locates the module root from this source file, falling back to
// the working directory for binaries built without source paths.
func ProjectRoot() (string, error) {
	if dir, ok := sourceDir(); ok {
		if root, found := walkUp(dir, nil); found {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("confkit: getwd: %w", err)
	}
	return wd, nil
}

// Locate returns rel when it exists as given, otherwise the same path under
// the module root if that exists. Binaries started from a subdirectory still
// find etc/yidino.yaml this way.
func Locate(rel string) string {
	if rel == "" || filepath.IsAbs(rel) || exists(rel) {
		return rel
	}
	root, err := ProjectRoot()
	if err != nil {
		return rel
	}
	if p := filepath.Join(root, rel); exists(p) {
		return p
	}
	return rel
}
