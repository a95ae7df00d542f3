package linker

// Symbol resolution. Every defined symbol's final address is
// base(bin) + offset-of-its-section-within-bin + symbol offset. LOCAL
// symbols go to the owning object's private table only; GLOBAL and WEAK
// compete for the global table under the precedence rules below.

// precedence: keep the existing entry unless a GLOBAL definition meets a
// WEAK one. Two GLOBALs are a hard error.
func resolveBinding(existing, incoming SymbolBind) (overwrite bool, conflict bool) {
	if incoming == SymbolBindGlobal && existing == SymbolBindGlobal {
		return false, true
	}
	if incoming == SymbolBindGlobal && existing == SymbolBindWeak {
		return true, false
	}
	return false, false
}

func ResolveSymbols(ctx *Context) error {
	ctx.Locals = make([]map[string]uint64, len(ctx.Objs))

	for i, obj := range ctx.Objs {
		ctx.Locals[i] = make(map[string]uint64)

		for _, sym := range obj.Symbols {
			if !sym.IsDefined() {
				continue
			}

			place, ok := ctx.Places[SectionRef{File: i, Section: sym.Section}]
			if !ok {
				return &SectionMissingError{Name: sym.Section}
			}
			bin := ctx.Bins[place.Bin]
			vaddr := bin.Addr + place.Offset + sym.Offset

			switch sym.Bind {
			case SymbolBindLocal:
				ctx.Locals[i][sym.Name] = vaddr
			case SymbolBindGlobal, SymbolBindWeak:
				existing, ok := ctx.Globals[sym.Name]
				if !ok {
					ctx.Globals[sym.Name] = &Resolved{
						VAddr: vaddr,
						Bind:  sym.Bind,
						Bin:   place.Bin,
						Size:  sym.Size,
					}
					continue
				}
				overwrite, conflict := resolveBinding(existing.Bind, sym.Bind)
				if conflict {
					return &MultipleDefinitionError{Name: sym.Name}
				}
				if overwrite {
					ctx.Globals[sym.Name] = &Resolved{
						VAddr: vaddr,
						Bind:  sym.Bind,
						Bin:   place.Bin,
						Size:  sym.Size,
					}
				}
			}
		}
	}

	return nil
}
