package linker

// Archive member selection. A tracker keeps the names that already have a
// real definition and the names referenced but not yet defined; members
// that define a currently-undefined name are pulled in, and the scan
// repeats until a full pass over all archives adds nothing.

type symbolTracker struct {
	defined   map[string]bool
	undefined map[string]bool
}

func newSymbolTracker(entry string) *symbolTracker {
	t := &symbolTracker{
		defined:   make(map[string]bool),
		undefined: make(map[string]bool),
	}
	if entry != "" {
		t.undefined[entry] = true
	}
	return t
}

// add merges one selected object into the tracker: its definitions settle
// open references, its references open new ones.
func (t *symbolTracker) add(obj *FLEObject) {
	for _, sym := range obj.Symbols {
		if sym.IsDefined() {
			t.defined[sym.Name] = true
			delete(t.undefined, sym.Name)
		}
	}
	for _, sym := range obj.Symbols {
		if sym.Bind == SymbolBindUndef && !t.defined[sym.Name] {
			t.undefined[sym.Name] = true
		}
	}
	// relocation targets count as references too; objects assembled from
	// hand-written code do not always carry UNDEF symbol entries
	for _, name := range obj.SecOrder {
		for _, rel := range obj.Sections[name].Relocs {
			if !t.defined[rel.Symbol] {
				t.undefined[rel.Symbol] = true
			}
		}
	}
}

// resolvesAny reports whether obj defines a name the tracker still wants.
func (t *symbolTracker) resolvesAny(obj *FLEObject) bool {
	for _, sym := range obj.Symbols {
		if sym.IsDefined() && t.undefined[sym.Name] {
			return true
		}
	}
	return false
}

// GatherInputs selects the objects taking part in the link. Relocatable
// objects are selected unconditionally in command-line order. Shared
// objects contribute their name to Needed and their defined symbols to
// DynExports but no code. Archive members join via the fixpoint above.
// Unresolved references are not an error here; they surface during
// relocation.
func GatherInputs(ctx *Context, inputs []*FLEObject) error {
	tracker := newSymbolTracker(ctx.Args.Entry)
	var archives []*FLEObject

	for _, in := range inputs {
		switch in.Type {
		case FileTypeObject:
			ctx.Objs = append(ctx.Objs, in)
			tracker.add(in)
		case FileTypeShared:
			ctx.Needed = append(ctx.Needed, in.Name)
			for _, sym := range in.Symbols {
				if sym.Bind != SymbolBindUndef {
					ctx.DynExports[sym.Name] = true
				}
			}
		case FileTypeArchive:
			archives = append(archives, in)
		default:
			return &UnsupportedInputError{Name: in.Name, Type: in.Type}
		}
	}

	included := make(map[*FLEObject]bool)
	for changed := true; changed; {
		changed = false
		for _, ar := range archives {
			for _, member := range ar.Members {
				if included[member] {
					continue
				}
				if !tracker.resolvesAny(member) {
					continue
				}
				ctx.Objs = append(ctx.Objs, member)
				tracker.add(member)
				included[member] = true
				changed = true
				ctx.Logger.Debug("pulled archive member",
					"archive", ar.Name, "member", member.Name)
			}
		}
	}

	return nil
}
