package linker

import (
	"errors"
	"testing"
)

func defObj(name, sym string, bind SymbolBind, fill byte) *FLEObject {
	obj := newTestObj(name)
	data := make([]byte, 8)
	for i := range data {
		data[i] = fill
	}
	addSection(obj, ".text", data)
	addSymbol(obj, sym, bind, ".text", 0, 8)
	return obj
}

// A strong definition beats a weak one regardless of input order.
func TestStrongOverWeak(t *testing.T) {
	tests := []struct {
		name  string
		first SymbolBind
	}{
		{"weak first", SymbolBindWeak},
		{"strong first", SymbolBindGlobal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := SymbolBindGlobal
			if tt.first == SymbolBindGlobal {
				second = SymbolBindWeak
			}

			weakFill, strongFill := byte(0xAA), byte(0xBB)
			fillFor := func(b SymbolBind) byte {
				if b == SymbolBindGlobal {
					return strongFill
				}
				return weakFill
			}

			start := newTestObj("start.o")
			addSection(start, ".text", make([]byte, 4))
			addSymbol(start, "_start", SymbolBindGlobal, ".text", 0, 4)

			ctx := NewContext()
			out := mustLink(t, ctx,
				start,
				defObj("a.o", "f", tt.first, fillFor(tt.first)),
				defObj("b.o", "f", second, fillFor(second)))

			res := ctx.Globals["f"]
			if res.Bind != SymbolBindGlobal {
				t.Fatalf("f resolved %s, want GLOBAL", res.Bind)
			}
			body := out.Sections[".text"].Data[res.VAddr-ctx.Bins[".text"].Addr]
			if body != strongFill {
				t.Errorf("f resolves to body %#x, want strong body %#x", body, strongFill)
			}
		})
	}
}

func TestMultipleStrongDefinition(t *testing.T) {
	ctx := NewContext()
	ctx.Args.Entry = "f"
	_, err := Link(ctx, []*FLEObject{
		defObj("a.o", "f", SymbolBindGlobal, 0),
		defObj("b.o", "f", SymbolBindGlobal, 0),
	})

	var mde *MultipleDefinitionError
	if !errors.As(err, &mde) {
		t.Fatalf("err = %v, want MultipleDefinitionError", err)
	}
	if mde.Name != "f" {
		t.Errorf("conflicting name = %q, want f", mde.Name)
	}
}

func TestWeakKeepsFirst(t *testing.T) {
	ctx := NewContext()
	ctx.Args.Entry = "f"
	mustLink(t, ctx,
		defObj("a.o", "f", SymbolBindWeak, 0),
		defObj("b.o", "f", SymbolBindWeak, 0))

	// a.o's .text lands first in the bin
	if got := ctx.Globals["f"].VAddr; got != ExecBaseAddr {
		t.Errorf("f at %#x, want first definition at %#x", got, uint64(ExecBaseAddr))
	}
}

// LOCAL symbols satisfy references from their own object only.
func TestLocalInvisibleAcrossObjects(t *testing.T) {
	a := newTestObj("a.o")
	addSection(a, ".text", make([]byte, 8))
	addSymbol(a, "helper", SymbolBindLocal, ".text", 0, 8)
	addSymbol(a, "_start", SymbolBindGlobal, ".text", 4, 4)

	b := newTestObj("b.o")
	addSection(b, ".text", make([]byte, 8),
		Reloc{Offset: 1, Type: RPC32, Symbol: "helper", Addend: -4})
	addSymbol(b, "g", SymbolBindGlobal, ".text", 0, 8)

	ctx := NewContext()
	_, err := Link(ctx, []*FLEObject{a, b})

	var use *UndefinedSymbolError
	if !errors.As(err, &use) {
		t.Fatalf("err = %v, want UndefinedSymbolError", err)
	}
	if use.Name != "helper" {
		t.Errorf("undefined name = %q, want helper", use.Name)
	}
}

// Same-object LOCAL references resolve, and shadow a global of the same
// name elsewhere.
func TestLocalResolvesWithinObject(t *testing.T) {
	a := newTestObj("a.o")
	addSection(a, ".text", make([]byte, 16),
		Reloc{Offset: 1, Type: RPC32, Symbol: "helper", Addend: -4})
	addSymbol(a, "_start", SymbolBindGlobal, ".text", 0, 8)
	addSymbol(a, "helper", SymbolBindLocal, ".text", 8, 8)

	b := newTestObj("b.o")
	addSection(b, ".text", make([]byte, 8))
	addSymbol(b, "helper", SymbolBindGlobal, ".text", 0, 8)

	ctx := NewContext()
	out := mustLink(t, ctx, a, b)

	// a.o's local helper at 0x400008, not b.o's global at 0x400010
	got := int32(patched(t, out, ".text", 1, 4))
	want := int32(0x400008 - 4 - 0x400001)
	if got != want {
		t.Errorf("PC32 patch = %#x, want local target %#x", got, want)
	}
}

// Symbol addresses decompose into bin base + section offset + symbol
// offset.
func TestSymbolAddressComposition(t *testing.T) {
	a := newTestObj("a.o")
	addSection(a, ".text", make([]byte, 32))
	addSection(a, ".data", make([]byte, 8))
	addSymbol(a, "_start", SymbolBindGlobal, ".text", 0, 32)

	b := newTestObj("b.o")
	addSection(b, ".text", make([]byte, 16))
	addSection(b, ".data", make([]byte, 8))
	addSymbol(b, "f", SymbolBindGlobal, ".text", 4, 12)
	addSymbol(b, "v", SymbolBindGlobal, ".data", 2, 4)

	ctx := NewContext()
	mustLink(t, ctx, a, b)

	if got, want := ctx.Globals["f"].VAddr, uint64(0x400000+32+4); got != want {
		t.Errorf("f at %#x, want %#x", got, want)
	}
	if got, want := ctx.Globals["v"].VAddr, ctx.Bins[".data"].Addr+8+2; got != want {
		t.Errorf("v at %#x, want %#x", got, want)
	}
}
