//go:build linux && amd64

package linker

import (
	"errors"
	"strings"
	"testing"
)

func TestExecRejectsNonExecutable(t *testing.T) {
	obj := newTestObj("a.o")
	if err := Exec(obj); err == nil {
		t.Fatal("relocatable object accepted for execution")
	}
}

func TestExecRejectsDynamicImage(t *testing.T) {
	exe := NewFLEObject(FileTypeExecutable, "a.out")
	exe.Needed = []string{"libfuncs.so"}
	err := Exec(exe)
	if err == nil || !strings.Contains(err.Error(), "interpreter") {
		t.Fatalf("err = %v, want interpreter complaint", err)
	}
}

func TestExecMissingSection(t *testing.T) {
	exe := NewFLEObject(FileTypeExecutable, "a.out")
	exe.Phdrs = []ProgramHeader{{Name: ".text", VAddr: 0x400000, Size: 16, Flags: PHFRead | PHFExec}}

	err := Exec(exe)
	var sme *SectionMissingError
	if !errors.As(err, &sme) {
		t.Fatalf("err = %v, want SectionMissingError", err)
	}
}
