package linker

import (
	"fmt"
	"math"

	"github.com/hcyang1106/fle-linker/pkg/utils"
)

// Relocation application. For a relocation at offset within an input
// section placed at Sv inside bin B (base Bv):
//
//	P = Bv + Sv + offset   patch site virtual address
//	S = target address     A = addend
//
// Internal references patch bytes directly; dynamic references route
// through the PLT (direct calls) or the GOT, or become dynamic relocation
// records the loader applies.

func fitsU32(v int64) bool {
	return v >= 0 && v <= math.MaxUint32
}

func fitsS32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func (ctx *Context) pltSlotAddr(idx uint32) uint64 {
	return ctx.Bins[".plt"].Addr + uint64(idx)*PltEntrySize
}

func (ctx *Context) gotSlotAddr(idx uint32) uint64 {
	return ctx.Bins[".got"].Addr + uint64(idx)*GotEntrySize
}

func ApplyRelocations(ctx *Context) error {
	for i, obj := range ctx.Objs {
		for _, name := range obj.SecOrder {
			sec := obj.Sections[name]
			if len(sec.Relocs) == 0 {
				continue
			}

			place := ctx.Places[SectionRef{File: i, Section: name}]
			bin := ctx.Bins[place.Bin]
			if bin.IsBss() {
				return &UnsupportedRelocationError{
					Type:   sec.Relocs[0].Type,
					Reason: "relocation in .bss section " + name,
				}
			}

			for _, rel := range sec.Relocs {
				if err := ctx.applyReloc(i, bin, place, &rel); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (ctx *Context) applyReloc(fileIdx int, bin *OutputBin, place Place, rel *Reloc) error {
	patchOff := place.Offset + rel.Offset
	P := bin.Addr + patchOff
	A := rel.Addend

	if S, ok := ctx.GetSymbolAddr(fileIdx, rel.Symbol); ok {
		return ctx.patchInternal(bin, patchOff, P, S, A, rel)
	}

	gotIdx, dynamic := ctx.GotIdx[rel.Symbol]
	if !dynamic {
		return &UndefinedSymbolError{Name: rel.Symbol}
	}

	switch rel.Type {
	case RPC32:
		pltIdx, ok := ctx.PltIdx[rel.Symbol]
		utils.Assert(ok)
		val := int64(ctx.pltSlotAddr(pltIdx)) + A - int64(P)
		if !fitsS32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	case RGotPCRel:
		val := int64(ctx.gotSlotAddr(gotIdx)) + A - int64(P)
		if !fitsS32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	case RAbs32, RAbs32S, RAbs64:
		// resolved by the loader; the patch site stays zero
		ctx.DynRelocs = append(ctx.DynRelocs, Reloc{
			Offset: P,
			Type:   rel.Type,
			Symbol: rel.Symbol,
			Addend: A,
		})
	default:
		return &UnsupportedRelocationError{Type: rel.Type}
	}
	return nil
}

func (ctx *Context) patchInternal(bin *OutputBin, patchOff, P, S uint64, A int64, rel *Reloc) error {
	switch rel.Type {
	case RAbs32:
		val := int64(S) + A
		if !fitsU32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	case RAbs32S:
		val := int64(S) + A
		if !fitsS32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	case RAbs64:
		utils.WriteLE(bin.Buf[patchOff:], uint64(int64(S)+A), 8)
	case RPC32:
		val := int64(S) + A - int64(P)
		if !fitsS32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	case RGotPCRel:
		// even an internal target is reached through its GOT slot; the
		// slot itself is settled in FillGotSlots
		idx, ok := ctx.GotIdx[rel.Symbol]
		utils.Assert(ok)
		ctx.GotInternal[rel.Symbol] = S
		val := int64(ctx.gotSlotAddr(idx)) + A - int64(P)
		if !fitsS32(val) {
			return ctx.overflowErr(rel, val)
		}
		utils.WriteLE(bin.Buf[patchOff:], uint64(val), 4)
	default:
		return &UnsupportedRelocationError{Type: rel.Type}
	}
	return nil
}

func (ctx *Context) overflowErr(rel *Reloc, val int64) error {
	return &UnsupportedRelocationError{
		Type:   rel.Type,
		Reason: fmt.Sprintf("value %#x overflows against %s", val, rel.Symbol),
	}
}

// FillGotSlots settles every GOT slot: slots whose target lives in this
// image and whose image loads at a fixed base are written directly;
// everything else becomes an ABS64 dynamic relocation the loader fills at
// process start.
func FillGotSlots(ctx *Context) {
	if len(ctx.GotSyms) == 0 {
		return
	}
	got := ctx.Bins[".got"]

	for idx, name := range ctx.GotSyms {
		slotOff := uint64(idx) * GotEntrySize
		if !ctx.Args.Shared {
			if addr, ok := ctx.GotInternal[name]; ok {
				utils.WriteLE(got.Buf[slotOff:], addr, GotEntrySize)
				continue
			}
			if res, ok := ctx.Globals[name]; ok {
				utils.WriteLE(got.Buf[slotOff:], res.VAddr, GotEntrySize)
				continue
			}
		}
		ctx.DynRelocs = append(ctx.DynRelocs, Reloc{
			Offset: got.Addr + slotOff,
			Type:   RAbs64,
			Symbol: name,
			Addend: 0,
		})
	}
}
