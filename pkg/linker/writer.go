package linker

import (
	"encoding/json"
	"os"
)

func encodeRelocs(rels []Reloc) []relocJSON {
	if len(rels) == 0 {
		return nil
	}
	out := make([]relocJSON, 0, len(rels))
	for _, r := range rels {
		out = append(out, relocJSON{
			Offset: r.Offset,
			Type:   r.Type.String(),
			Symbol: r.Symbol,
			Addend: r.Addend,
		})
	}
	return out
}

func toJSON(obj *FLEObject) *fleJSON {
	doc := &fleJSON{
		Type:      obj.Type.String(),
		Name:      obj.Name,
		Entry:     obj.Entry,
		Needed:    obj.Needed,
		DynRelocs: encodeRelocs(obj.DynRelocs),
	}

	for _, s := range obj.Shdrs {
		doc.Shdrs = append(doc.Shdrs, shdrJSON(s))
	}

	for _, name := range obj.SecOrder {
		sec := obj.Sections[name]
		doc.Sections = append(doc.Sections, sectionJSON{
			Name:   sec.Name,
			Data:   encodeHexBytes(sec.Data),
			Relocs: encodeRelocs(sec.Relocs),
		})
	}

	for _, sym := range obj.Symbols {
		doc.Symbols = append(doc.Symbols, symbolJSON{
			Name:    sym.Name,
			Bind:    sym.Bind.String(),
			Section: sym.Section,
			Offset:  sym.Offset,
			Size:    sym.Size,
		})
	}

	for _, p := range obj.Phdrs {
		doc.Phdrs = append(doc.Phdrs, phdrJSON(p))
	}

	for _, member := range obj.Members {
		doc.Members = append(doc.Members, *toJSON(member))
	}

	return doc
}

// WriteFLE serializes an FLE object to its JSON document form.
func WriteFLE(obj *FLEObject) ([]byte, error) {
	return json.MarshalIndent(toJSON(obj), "", "  ")
}

// WriteFLEFile writes the serialized object to disk.
func WriteFLEFile(obj *FLEObject, path string) error {
	data, err := WriteFLE(obj)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0755)
}
