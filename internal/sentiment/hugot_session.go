//go:build !ORT

package sentiment

import "github.com/knights-analytics/hugot"

// newHugotSession uses the pure Go runtime so the binary needs no shared libraries.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
