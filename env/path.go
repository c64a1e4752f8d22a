package env

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/megs-sim/megs/errors"
)

// ParsePath splits a module path of the form <category>/<module>.<ext>.
// The immediate parent directory names the category and the file stem names
// the module. A path without a parent directory is rejected.
func ParsePath(path string) (categoryName, moduleName string, err error) {
	clean := filepath.Clean(path)
	dir, file := filepath.Split(clean)

	parent := filepath.Base(filepath.Clean(dir))
	if dir == "" || parent == "." || parent == ".." || parent == string(filepath.Separator) {
		return "", "", errors.InvalidPath(path)
	}

	moduleName = strings.TrimSuffix(file, filepath.Ext(file))
	if moduleName == "" {
		return "", "", errors.InvalidPath(path)
	}
	return parent, moduleName, nil
}

// LoadDir loads every <root>/<category>/<module><ext> file. A module that
// fails does not stop the others; all failures are returned combined with
// the number of modules that were added.
func (e *Environment) LoadDir(ctx context.Context, root, ext string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, errors.IO(root, err)
	}

	var loaded int
	var errs error
	for _, dir := range entries {
		if !dir.IsDir() {
			continue
		}
		catDir := filepath.Join(root, dir.Name())
		files, err := os.ReadDir(catDir)
		if err != nil {
			errs = multierr.Append(errs, errors.IO(catDir, err))
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ext) {
				continue
			}
			path := filepath.Join(catDir, f.Name())
			if err := e.AddModuleFromPath(ctx, path); err != nil {
				e.logger.Warn("skipping module", zap.String("path", path), zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			loaded++
		}
	}
	return loaded, errs
}
