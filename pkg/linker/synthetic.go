package linker

// Dynamic-artifact synthesis. Before layout, every relocation target is
// classified; dynamically satisfied references get a GOT slot (and a PLT
// slot for direct calls) so the .plt and .got bins can be sized before
// addresses are handed out.

const (
	PltEntrySize = 6
	GotEntrySize = 8
)

func (ctx *Context) definedNames() map[string]bool {
	defined := make(map[string]bool)
	for _, obj := range ctx.Objs {
		for _, sym := range obj.Symbols {
			if sym.IsDefined() {
				defined[sym.Name] = true
			}
		}
	}
	return defined
}

func (ctx *Context) addGotSym(name string) {
	if _, ok := ctx.GotIdx[name]; ok {
		return
	}
	ctx.GotIdx[name] = uint32(len(ctx.GotSyms))
	ctx.GotSyms = append(ctx.GotSyms, name)
}

func (ctx *Context) addPltSym(name string) {
	if _, ok := ctx.PltIdx[name]; ok {
		return
	}
	ctx.PltIdx[name] = uint32(len(ctx.PltSyms))
	ctx.PltSyms = append(ctx.PltSyms, name)
	ctx.addGotSym(name)
}

// CreateSyntheticBins scans all relocations and pre-sizes .plt and .got.
// The bins are zero filled; relocation application and the stub fill pass
// overwrite them in place.
func CreateSyntheticBins(ctx *Context) {
	defined := ctx.definedNames()

	for _, obj := range ctx.Objs {
		for _, name := range obj.SecOrder {
			for _, rel := range obj.Sections[name].Relocs {
				internal := defined[rel.Symbol]
				dynamic := !internal &&
					(ctx.DynExports[rel.Symbol] || ctx.Args.Shared)

				switch {
				case internal:
					// a GOT-relative access needs a slot even when the
					// target lives in this image
					if rel.Type == RGotPCRel {
						ctx.addGotSym(rel.Symbol)
					}
				case dynamic:
					ctx.addGotSym(rel.Symbol)
					if rel.Type == RPC32 {
						ctx.addPltSym(rel.Symbol)
					}
				}
			}
		}
	}

	if len(ctx.PltSyms) > 0 {
		plt := ctx.getBin(".plt")
		plt.Buf = make([]byte, len(ctx.PltSyms)*PltEntrySize)
		plt.MemSize = uint64(len(plt.Buf))
	}
	if len(ctx.GotSyms) > 0 {
		got := ctx.getBin(".got")
		got.Buf = make([]byte, len(ctx.GotSyms)*GotEntrySize)
		got.MemSize = uint64(len(got.Buf))
	}

	ctx.Logger.Debug("synthesized dynamic bins",
		"plt_entries", len(ctx.PltSyms), "got_entries", len(ctx.GotSyms))
}
