package common

import "path"

// PkgAlias returns the name a package is usually imported as, the last
// element of its import path. Types of the universe scope have no path.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}
