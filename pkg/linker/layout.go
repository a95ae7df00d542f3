package linker

import (
	"github.com/hcyang1106/fle-linker/pkg/utils"
)

const ExecBaseAddr = 0x400000

// AssignAddresses walks the bins in their fixed order and gives each
// non-empty one a page-aligned base. Shared objects are linked at zero and
// relocated by the loader.
func AssignAddresses(ctx *Context) {
	vaddr := uint64(ExecBaseAddr)
	if ctx.Args.Shared {
		vaddr = 0
	}

	for _, name := range OutputBinOrder {
		bin, ok := ctx.Bins[name]
		if !ok || bin.MemSize == 0 {
			continue
		}
		vaddr = utils.AlignTo(vaddr, PageSize)
		bin.Addr = vaddr
		vaddr += bin.MemSize
		ctx.Logger.Debug("placed bin",
			"bin", bin.Name, "addr", bin.Addr, "size", bin.MemSize)
	}
}
