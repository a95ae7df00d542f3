package linker

import (
	"strings"
)

const PageSize = 4096

// Output bins in their fixed layout order. .plt and .got are synthesized;
// the other four receive input sections by name prefix.
var OutputBinOrder = []string{".text", ".plt", ".rodata", ".data", ".got", ".bss"}

var binPrefixes = []string{".text", ".rodata", ".data", ".bss"}

// BinFor maps an input section name to its output bin by longest prefix
// match; unmatched names land in .data.
func BinFor(name string) string {
	best := ""
	for _, p := range binPrefixes {
		if strings.HasPrefix(name, p) && len(p) > len(best) {
			best = p
		}
	}
	if best == "" {
		return ".data"
	}
	return best
}

// OutputBin is one output section under construction. Buf holds the file
// bytes; MemSize additionally counts .bss-class space that never reaches
// the file.
type OutputBin struct {
	Name    string
	Addr    uint64
	Buf     []byte
	MemSize uint64
	Flags   uint32
}

func NewOutputBin(name string) *OutputBin {
	return &OutputBin{
		Name:  name,
		Flags: binPermFlags(name),
	}
}

func (b *OutputBin) IsBss() bool {
	return b.Name == ".bss"
}

func binPermFlags(name string) uint32 {
	switch name {
	case ".text", ".plt":
		return PHFRead | PHFExec
	case ".rodata":
		return PHFRead
	default:
		return PHFRead | PHFWrite
	}
}

func (b *OutputBin) shdrFlags() uint32 {
	flags := SHFAlloc
	if b.Flags&PHFWrite != 0 {
		flags |= SHFWrite
	}
	if b.Flags&PHFExec != 0 {
		flags |= SHFExec
	}
	if b.IsBss() {
		flags |= SHFNoBits
	}
	return flags
}

func (ctx *Context) getBin(name string) *OutputBin {
	if bin, ok := ctx.Bins[name]; ok {
		return bin
	}
	bin := NewOutputBin(name)
	ctx.Bins[name] = bin
	return bin
}

// BinSections merges every input section into its output bin in
// (selected object, section iteration) order. The append offset at merge
// time becomes the section's offset within the bin; symbol addresses are
// computed from these offsets later, so the order here is normative.
func BinSections(ctx *Context) {
	for i, obj := range ctx.Objs {
		for _, name := range obj.SecOrder {
			sec := obj.Sections[name]
			bin := ctx.getBin(BinFor(name))
			size := obj.SectionMemSize(name)
			if size < uint64(len(sec.Data)) {
				size = uint64(len(sec.Data))
			}

			offset := bin.MemSize
			if !bin.IsBss() {
				bin.Buf = append(bin.Buf, sec.Data...)
				// headers may claim more memory than the payload holds
				for uint64(len(bin.Buf)) < offset+size {
					bin.Buf = append(bin.Buf, 0)
				}
			}
			bin.MemSize += size

			ctx.Places[SectionRef{File: i, Section: name}] = Place{
				Bin:    bin.Name,
				Offset: offset,
			}
			ctx.Logger.Debug("binned section",
				"file", obj.Name, "section", name,
				"bin", bin.Name, "offset", offset, "size", size)
		}
	}
}
