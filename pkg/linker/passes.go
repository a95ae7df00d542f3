package linker

// Link runs the whole pipeline over the parsed inputs. It is a pure
// function of (inputs, ctx.Args): inputs are never mutated, all
// intermediate state lives on ctx, and no partial output escapes on error.
func Link(ctx *Context, inputs []*FLEObject) (*FLEObject, error) {
	if err := GatherInputs(ctx, inputs); err != nil {
		return nil, err
	}
	BinSections(ctx)
	CreateSyntheticBins(ctx)
	AssignAddresses(ctx)
	if err := ResolveSymbols(ctx); err != nil {
		return nil, err
	}
	if err := ApplyRelocations(ctx); err != nil {
		return nil, err
	}
	FillGotSlots(ctx)
	if err := FillPltStubs(ctx); err != nil {
		return nil, err
	}
	return AssembleOutput(ctx)
}
