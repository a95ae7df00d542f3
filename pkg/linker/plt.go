package linker

import (
	"fmt"

	"github.com/hcyang1106/fle-linker/pkg/utils"
)

// GeneratePltStub encodes one PLT entry: jmp *disp32(%rip), the
// position-independent indirect jump through the entry's GOT slot.
func GeneratePltStub(disp int32) [PltEntrySize]byte {
	var stub [PltEntrySize]byte
	stub[0] = 0xFF
	stub[1] = 0x25
	utils.WriteLE(stub[2:], uint64(uint32(disp)), 4)
	return stub
}

// FillPltStubs writes the jump stubs. The displacement is measured from
// the end of the 6-byte stub to its GOT slot and must fit a signed 32-bit
// field.
func FillPltStubs(ctx *Context) error {
	if len(ctx.PltSyms) == 0 {
		return nil
	}
	plt := ctx.Bins[".plt"]

	for idx, name := range ctx.PltSyms {
		pltAddr := ctx.pltSlotAddr(uint32(idx))
		gotAddr := ctx.gotSlotAddr(ctx.GotIdx[name])

		disp := int64(gotAddr) - int64(pltAddr+PltEntrySize)
		if !fitsS32(disp) {
			return &UnsupportedRelocationError{
				Type:   RPC32,
				Reason: fmt.Sprintf("PLT displacement %#x overflows for %s", disp, name),
			}
		}

		stub := GeneratePltStub(int32(disp))
		copy(plt.Buf[idx*PltEntrySize:], stub[:])
	}
	return nil
}
