//go:build !giouring

package uring

import "fmt"

func newGioRing(cfg Config) (Ring, error) {
	return nil, fmt.Errorf("uring: giouring backend not compiled in; build with -tags giouring")
}
