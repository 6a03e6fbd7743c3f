package objtree

import "strings"

// Path is a slash-delimited object path. Child paths are textually prefixed
// by their parent path.
type Path string

// Root is the path of the object manager
const Root Path = "/"

// Join returns the child path for suffix. Joining onto Root does not double the slash.
func (p Path) Join(suffix string) Path {
	suffix = strings.Trim(suffix, "/")
	if p == Root || p == "" {
		return Path("/" + suffix)
	}
	return Path(string(p) + "/" + suffix)
}

// Parent returns the path one level up; Root is its own parent.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i <= 0 {
		return Root
	}
	return p[:i]
}

// Base returns the last path element
func (p Path) Base() string {
	i := strings.LastIndexByte(string(p), '/')
	return string(p[i+1:])
}

// IsDescendantOf reports whether p lies strictly below ancestor
func (p Path) IsDescendantOf(ancestor Path) bool {
	if p == ancestor || p == Root {
		return false
	}
	if ancestor == Root {
		return strings.HasPrefix(string(p), "/")
	}
	return strings.HasPrefix(string(p), string(ancestor)+"/")
}

// IsChildOf reports whether p is a direct child of parent
func (p Path) IsChildOf(parent Path) bool {
	return p.IsDescendantOf(parent) && p.Parent() == parent
}

// Valid reports whether p is an absolute path with no empty elements
// and only [A-Za-z0-9_] characters, as object buses require.
func (p Path) Valid() bool {
	if p == Root {
		return true
	}
	if len(p) < 2 || p[0] != '/' || p[len(p)-1] == '/' {
		return false
	}
	for _, elem := range strings.Split(string(p[1:]), "/") {
		if elem == "" {
			return false
		}
		for _, c := range elem {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
				return false
			}
		}
	}
	return true
}

func (p Path) String() string {
	return string(p)
}
