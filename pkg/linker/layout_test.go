package linker

import (
	"testing"
)

// .rodata does not share .text's page: 100 bytes of text still push the
// next bin to the following 4 KiB boundary.
func TestPageAlignedBins(t *testing.T) {
	obj := newTestObj("a.o")
	addSection(obj, ".text", make([]byte, 100))
	addSection(obj, ".rodata", make([]byte, 50))
	addSymbol(obj, "_start", SymbolBindGlobal, ".text", 0, 100)

	ctx := NewContext()
	mustLink(t, ctx, obj)

	if addr := ctx.Bins[".text"].Addr; addr != 0x400000 {
		t.Errorf(".text at %#x, want 0x400000", addr)
	}
	if addr := ctx.Bins[".rodata"].Addr; addr != 0x401000 {
		t.Errorf(".rodata at %#x, want 0x401000", addr)
	}
}

func TestSegmentsDisjointAndAligned(t *testing.T) {
	obj := newTestObj("a.o")
	addSection(obj, ".text", make([]byte, 5000))
	addSection(obj, ".rodata", make([]byte, 100))
	addSection(obj, ".data", make([]byte, 8192))
	addBss(obj, ".bss", 300)
	addSymbol(obj, "_start", SymbolBindGlobal, ".text", 0, 0)

	ctx := NewContext()
	out := mustLink(t, ctx, obj)

	if len(out.Phdrs) != 4 {
		t.Fatalf("got %d phdrs, want 4", len(out.Phdrs))
	}
	for i := range out.Phdrs {
		if out.Phdrs[i].VAddr%PageSize != 0 {
			t.Errorf("%s at %#x is not page aligned",
				out.Phdrs[i].Name, out.Phdrs[i].VAddr)
		}
		for j := i + 1; j < len(out.Phdrs); j++ {
			a, b := out.Phdrs[i], out.Phdrs[j]
			if a.VAddr < b.VAddr+b.Size && b.VAddr < a.VAddr+a.Size {
				t.Errorf("segments %s and %s overlap", a.Name, b.Name)
			}
		}
	}
}

func TestSharedLinksAtZero(t *testing.T) {
	obj := newTestObj("lib.o")
	addSection(obj, ".text", make([]byte, 16))
	addSymbol(obj, "f", SymbolBindGlobal, ".text", 0, 16)

	ctx := NewContext()
	ctx.Args.Shared = true
	mustLink(t, ctx, obj)

	if addr := ctx.Bins[".text"].Addr; addr != 0 {
		t.Errorf("shared .text at %#x, want 0", addr)
	}
}

// .bss claims address space but never file bytes.
func TestBssCarriesNoBytes(t *testing.T) {
	obj := newTestObj("a.o")
	addSection(obj, ".text", make([]byte, 4))
	addBss(obj, ".bss", 256)
	addSymbol(obj, "_start", SymbolBindGlobal, ".text", 0, 4)
	addSymbol(obj, "buf", SymbolBindGlobal, ".bss", 0, 256)

	ctx := NewContext()
	out := mustLink(t, ctx, obj)

	sec := out.Sections[".bss"]
	if sec == nil {
		t.Fatal("output lost .bss")
	}
	if len(sec.Data) != 0 {
		t.Errorf(".bss carries %d bytes in the file", len(sec.Data))
	}

	shdr := out.FindShdr(".bss")
	if shdr == nil || shdr.Size != 256 {
		t.Fatalf(".bss shdr = %+v, want size 256", shdr)
	}
	if shdr.Flags&SHFNoBits == 0 {
		t.Errorf(".bss shdr lacks NOBITS")
	}

	if ctx.Globals["buf"].VAddr != ctx.Bins[".bss"].Addr {
		t.Errorf("buf at %#x, want .bss base %#x",
			ctx.Globals["buf"].VAddr, ctx.Bins[".bss"].Addr)
	}
}

func TestBinForPrefixes(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{".text", ".text"},
		{".text.startup", ".text"},
		{".rodata.str1.1", ".rodata"},
		{".data", ".data"},
		{".data.rel.ro", ".data"},
		{".bss.page", ".bss"},
		{".ctors", ".data"},
		{"note", ".data"},
	}
	for _, tt := range tests {
		if got := BinFor(tt.section); got != tt.want {
			t.Errorf("BinFor(%q) = %q, want %q", tt.section, got, tt.want)
		}
	}
}
