package utils

import (
	"fmt"
	"os"
	"runtime/debug"
)

func Fatal(v any) {
	fmt.Printf("fatal: %v\n", v)
	debug.PrintStack()
	os.Exit(1)
}

func MustNo(err error) {
	if err != nil {
		Fatal(err)
	}
}

func Assert(res bool) {
	if !res {
		Fatal("assertion failed")
	}
}

// o => -o
// plugin => -plugin, --plugin
func AddDashes(option string) []string {
	res := []string{}

	if len(option) == 1 {
		res = append(res, "-"+option)
	} else {
		res = append(res, "-"+option, "--"+option)
	}

	return res
}

func AlignTo(val, align uint64) uint64 {
	if align == 0 {
		return val
	}
	return (val + align - 1) &^ (align - 1)
}

// FLE images are little endian regardless of host
func WriteLE(buf []byte, val uint64, size int) {
	Assert(len(buf) >= size)
	for i := 0; i < size; i++ {
		buf[i] = byte(val >> (i * 8))
	}
}

func ReadLE(buf []byte, size int) uint64 {
	Assert(len(buf) >= size)
	val := uint64(0)
	for i := 0; i < size; i++ {
		val |= uint64(buf[i]) << (i * 8)
	}
	return val
}
