//go:build linux && amd64

package linker

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// jumpToEntry transfers control to a mapped entry point. Implemented in
// exec_stub_linux_amd64.s; it never returns.
func jumpToEntry(entry uintptr)

// Exec maps a statically linked FLE executable into the current process
// and jumps to its entry point. Each program header becomes an anonymous
// fixed private mapping; bytes are copied before the final permission
// bits go on, and .bss-class segments keep the zero fill mmap gave them.
func Exec(obj *FLEObject) error {
	if obj.Type != FileTypeExecutable {
		return fmt.Errorf("file is not an executable FLE")
	}
	if len(obj.Needed) > 0 || len(obj.DynRelocs) > 0 {
		return fmt.Errorf("dynamically linked executables need an interpreter")
	}

	for _, phdr := range obj.Phdrs {
		if phdr.Size == 0 {
			continue
		}

		sec, ok := obj.Sections[phdr.Name]
		if !ok {
			return &SectionMissingError{Name: phdr.Name}
		}

		addr, err := unix.MmapPtr(-1, 0,
			unsafe.Pointer(uintptr(phdr.VAddr)), uintptr(phdr.Size),
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_PRIVATE|unix.MAP_FIXED|unix.MAP_ANONYMOUS)
		if err != nil {
			return fmt.Errorf("mmap %s at %#x: %w", phdr.Name, phdr.VAddr, err)
		}

		mem := unsafe.Slice((*byte)(addr), phdr.Size)
		if !strings.HasPrefix(phdr.Name, ".bss") {
			copy(mem, sec.Data)
		}

		prot := 0
		if phdr.Flags&PHFRead != 0 {
			prot |= unix.PROT_READ
		}
		if phdr.Flags&PHFWrite != 0 {
			prot |= unix.PROT_WRITE
		}
		if phdr.Flags&PHFExec != 0 {
			prot |= unix.PROT_EXEC
		}
		if err := unix.Mprotect(mem, prot); err != nil {
			return fmt.Errorf("mprotect %s: %w", phdr.Name, err)
		}
	}

	jumpToEntry(uintptr(obj.Entry))
	panic("entry point returned")
}
