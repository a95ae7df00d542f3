package linker

import (
	"io"
	"log/slog"
)

type Args struct {
	Output string
	Entry  string
	Shared bool
}

// SectionRef identifies an input section by (selected object index, name).
// Selected object slices may grow during gathering, so the index is the
// stable identity, never a pointer.
type SectionRef struct {
	File    int
	Section string
}

// Place records where an input section landed inside its output bin.
type Place struct {
	Bin    string
	Offset uint64
}

// Resolved is a finished global symbol: its virtual address plus enough to
// rewrite the symbol into the output for shared exports.
type Resolved struct {
	VAddr uint64
	Bind  SymbolBind
	Bin   string
	Size  uint64
}

// Context owns every intermediate table of one Link invocation; inputs are
// never mutated. The caller creates it with NewContext and passes it to
// Link, which fills it in place without clearing it first; the tables stay
// readable after Link returns.
type Context struct {
	Args   Args
	Logger *slog.Logger

	// gathered inputs
	Objs       []*FLEObject
	Needed     []string
	DynExports map[string]bool

	// section placement and layout
	Bins   map[string]*OutputBin
	Places map[SectionRef]Place

	// PLT/GOT slot allocation
	GotSyms []string
	GotIdx  map[string]uint32
	PltSyms []string
	PltIdx  map[string]uint32

	// GOT targets that resolved inside the image, by slot name
	GotInternal map[string]uint64

	// symbol tables
	Locals  []map[string]uint64
	Globals map[string]*Resolved

	// dynamic relocation records for the output
	DynRelocs []Reloc
}

func NewContext() *Context {
	return &Context{
		Args: Args{
			Output: "a.out",
			Entry:  "_start",
		},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		DynExports:  make(map[string]bool),
		Bins:        make(map[string]*OutputBin),
		Places:      make(map[SectionRef]Place),
		GotIdx:      make(map[string]uint32),
		PltIdx:      make(map[string]uint32),
		GotInternal: make(map[string]uint64),
		Globals:     make(map[string]*Resolved),
	}
}

// GetSymbolAddr resolves a relocation target: the referencing object's
// locals first, then the global table. LOCAL symbols are never visible
// from another input.
func (ctx *Context) GetSymbolAddr(fileIdx int, name string) (uint64, bool) {
	if fileIdx < len(ctx.Locals) {
		if addr, ok := ctx.Locals[fileIdx][name]; ok {
			return addr, true
		}
	}
	if res, ok := ctx.Globals[name]; ok {
		return res.VAddr, true
	}
	return 0, false
}
