package util

import (
	"fmt"
	"path"
	"strings"
)

// JoinURL joins the base URL with the path segments.
func JoinURL(base string, paths ...string) string {
	return joinURL(base, paths...)
}

func joinURL(base string, paths ...string) string {
	p := path.Join(paths...)
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(p, "/"))
}
