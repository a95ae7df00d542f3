//go:build !(linux && amd64)

package linker

import "fmt"

func Exec(obj *FLEObject) error {
	return fmt.Errorf("exec is only supported on linux/amd64")
}
