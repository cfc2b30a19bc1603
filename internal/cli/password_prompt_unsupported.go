//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

// Platforms without a known no-echo mechanism fall back to the generated
// password path in create-admin.
func readPasswordNoEcho(_ *os.File) ([]byte, error) {
	return nil, errors.New("no-echo input is not supported on this platform")
}
