package linker

import (
	"sort"
)

// AssembleOutput materializes the linked image: one section and one
// program header per non-empty bin, the entry address, and, for shared
// output, the exported symbol table plus the dynamic records.
func AssembleOutput(ctx *Context) (*FLEObject, error) {
	outType := FileTypeExecutable
	if ctx.Args.Shared {
		outType = FileTypeShared
	}
	out := NewFLEObject(outType, ctx.Args.Output)

	fileOff := uint64(0)
	for _, name := range OutputBinOrder {
		bin, ok := ctx.Bins[name]
		if !ok || bin.MemSize == 0 {
			continue
		}

		sec := &Section{Name: bin.Name}
		if !bin.IsBss() {
			sec.Data = bin.Buf
		}
		out.AddSection(sec)

		out.Shdrs = append(out.Shdrs, SectionHeader{
			Name:   bin.Name,
			Size:   bin.MemSize,
			Flags:  bin.shdrFlags(),
			Addr:   bin.Addr,
			Offset: fileOff,
		})
		fileOff += uint64(len(sec.Data))

		out.Phdrs = append(out.Phdrs, ProgramHeader{
			Name:  bin.Name,
			VAddr: bin.Addr,
			Size:  bin.MemSize,
			Flags: bin.Flags,
		})
	}

	if ctx.Args.Shared {
		out.Symbols = ctx.exportedSymbols()
	}
	out.DynRelocs = ctx.DynRelocs
	out.Needed = ctx.Needed

	if res, ok := ctx.Globals[ctx.Args.Entry]; ok {
		out.Entry = res.VAddr
	} else if !ctx.Args.Shared {
		return nil, &MissingEntryError{Name: ctx.Args.Entry}
	}

	return out, nil
}

// exportedSymbols rewrites each winning GLOBAL/WEAK symbol against the
// output image: its section becomes the output bin and its offset the
// distance from the bin's base.
func (ctx *Context) exportedSymbols() []*Symbol {
	names := make([]string, 0, len(ctx.Globals))
	for name := range ctx.Globals {
		names = append(names, name)
	}
	sort.Strings(names)

	syms := make([]*Symbol, 0, len(names))
	for _, name := range names {
		res := ctx.Globals[name]
		bin := ctx.Bins[res.Bin]
		syms = append(syms, &Symbol{
			Name:    name,
			Bind:    res.Bind,
			Section: res.Bin,
			Offset:  res.VAddr - bin.Addr,
			Size:    res.Size,
		})
	}
	return syms
}
