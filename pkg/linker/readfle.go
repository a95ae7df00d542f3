package linker

import (
	"fmt"
	"io"
	"strings"
)

// Readfle pretty-prints an FLE object: sections, symbols, relocations and
// (for executables and shared objects) program headers. The name columns
// of the section and symbol tables are sized to the longest name; the
// program header table uses fixed widths.

func maxNameLen(names []string, floor int) int {
	max := floor
	for _, n := range names {
		if len(n) > max {
			max = len(n)
		}
	}
	return max
}

func shdrFlagString(flags uint32) string {
	var parts []string
	if flags&SHFAlloc != 0 {
		parts = append(parts, "ALLOC")
	}
	if flags&SHFWrite != 0 {
		parts = append(parts, "WRITE")
	}
	if flags&SHFExec != 0 {
		parts = append(parts, "EXEC")
	}
	if flags&SHFNoBits != 0 {
		parts = append(parts, "NOBITS")
	}
	return strings.Join(parts, "|")
}

func phdrFlagString(flags uint32) string {
	var parts []string
	if flags&PHFRead != 0 {
		parts = append(parts, "R")
	}
	if flags&PHFWrite != 0 {
		parts = append(parts, "W")
	}
	if flags&PHFExec != 0 {
		parts = append(parts, "X")
	}
	return strings.Join(parts, "|")
}

func Readfle(w io.Writer, obj *FLEObject) {
	fmt.Fprintf(w, "File: %s\n", obj.Name)
	fmt.Fprintf(w, "Type: %s\n\n", obj.Type)

	var secNames []string
	for i := range obj.Shdrs {
		secNames = append(secNames, obj.Shdrs[i].Name)
	}
	secW := maxNameLen(secNames, len("Name"))

	fmt.Fprintln(w, "Sections:")
	fmt.Fprintf(w, "%-*s  %-10s  %-20s  %-10s  %s\n",
		secW, "Name", "Size", "Flags", "Addr", "Offset")
	fmt.Fprintln(w, strings.Repeat("-", secW+55))
	for i := range obj.Shdrs {
		shdr := &obj.Shdrs[i]
		fmt.Fprintf(w, "%-*s  %-10s  %-20s  %-10s  %s\n",
			secW, shdr.Name,
			fmt.Sprintf("0x%04x", shdr.Size),
			shdrFlagString(shdr.Flags),
			fmt.Sprintf("0x%04x", shdr.Addr),
			fmt.Sprintf("0x%02x", shdr.Offset))
	}
	fmt.Fprintln(w)

	var symNames []string
	for _, sym := range obj.Symbols {
		symNames = append(symNames, sym.Name)
	}
	symW := maxNameLen(symNames, len("Name"))

	fmt.Fprintln(w, "Symbols:")
	fmt.Fprintf(w, "%-*s %-7s %-*s %-10s %s\n",
		symW, "Name", "Type", secW, "Section", "Offset", "Size")
	fmt.Fprintln(w, strings.Repeat("-", symW+secW+40))
	for _, sym := range obj.Symbols {
		fmt.Fprintf(w, "%-*s %-7s %-*s %-10s %s\n",
			symW, sym.Name, sym.Bind, secW, sym.Section,
			fmt.Sprintf("0x%04x", sym.Offset),
			fmt.Sprintf("0x%04x", sym.Size))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Relocations:")
	for _, name := range obj.SecOrder {
		sec := obj.Sections[name]
		if len(sec.Relocs) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", name)
		fmt.Fprintf(w, "  %-10s%-20s%-*s Addend\n", "Offset", "Type", symW, "Symbol")
		fmt.Fprintln(w, strings.Repeat("-", symW+40))
		for _, rel := range sec.Relocs {
			fmt.Fprintf(w, "  %-10s%-20s%-*s %s\n",
				fmt.Sprintf("0x%02x", rel.Offset),
				rel.Type, symW, rel.Symbol,
				fmt.Sprintf("0x%08x", uint64(rel.Addend)))
		}
		fmt.Fprintln(w)
	}

	if obj.Type == FileTypeExecutable || obj.Type == FileTypeShared {
		if len(obj.Phdrs) > 0 {
			fmt.Fprintln(w, "Program Headers:")
			fmt.Fprintf(w, "  %-20s%-18s%-10s%s\n",
				"Name", "Virtual Address", "Size", "Flags")
			fmt.Fprintln(w, strings.Repeat("-", 65))
			for _, phdr := range obj.Phdrs {
				fmt.Fprintf(w, "  %-20s%-18s%-10s %s\n",
					phdr.Name,
					fmt.Sprintf("0x%08x", phdr.VAddr),
					fmt.Sprintf("0x%04x", phdr.Size),
					phdrFlagString(phdr.Flags))
			}
		}
		fmt.Fprintf(w, "\nEntry: 0x%x\n", obj.Entry)
	}
}
