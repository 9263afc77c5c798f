//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// newHugotSession uses the pure Go backend unless built with -tags ORT.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
