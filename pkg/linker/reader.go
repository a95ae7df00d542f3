package linker

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// On-disk FLE documents are JSON. Sections are an ordered array
// (FLEObject.SecOrder keeps that order) and payload bytes
// are spelled as spaced hex, the way the format's tooling prints them.

type fleJSON struct {
	Type      string        `json:"type"`
	Name      string        `json:"name"`
	Entry     uint64        `json:"entry,omitempty"`
	Shdrs     []shdrJSON    `json:"shdrs,omitempty"`
	Sections  []sectionJSON `json:"sections,omitempty"`
	Symbols   []symbolJSON  `json:"symbols,omitempty"`
	Phdrs     []phdrJSON    `json:"phdrs,omitempty"`
	Members   []fleJSON     `json:"members,omitempty"`
	DynRelocs []relocJSON   `json:"dyn_relocs,omitempty"`
	Needed    []string      `json:"needed,omitempty"`
}

type shdrJSON struct {
	Name   string `json:"name"`
	Size   uint64 `json:"size"`
	Flags  uint32 `json:"flags"`
	Addr   uint64 `json:"addr"`
	Offset uint64 `json:"offset"`
}

type sectionJSON struct {
	Name   string      `json:"name"`
	Data   string      `json:"data"`
	Relocs []relocJSON `json:"relocs,omitempty"`
}

type relocJSON struct {
	Offset uint64 `json:"offset"`
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
	Addend int64  `json:"addend"`
}

type symbolJSON struct {
	Name    string `json:"name"`
	Bind    string `json:"bind"`
	Section string `json:"section"`
	Offset  uint64 `json:"offset"`
	Size    uint64 `json:"size"`
}

type phdrJSON struct {
	Name  string `json:"name"`
	VAddr uint64 `json:"vaddr"`
	Size  uint64 `json:"size"`
	Flags uint32 `json:"flags"`
}

func decodeHexBytes(s string) ([]byte, error) {
	fields := strings.Fields(s)
	joined := strings.Join(fields, "")
	if joined == "" {
		return nil, nil
	}
	return hex.DecodeString(joined)
}

func encodeHexBytes(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

func decodeRelocs(rels []relocJSON) ([]Reloc, error) {
	if len(rels) == 0 {
		return nil, nil
	}
	out := make([]Reloc, 0, len(rels))
	for _, r := range rels {
		typ, err := RelTypeFromString(r.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, Reloc{
			Offset: r.Offset,
			Type:   typ,
			Symbol: r.Symbol,
			Addend: r.Addend,
		})
	}
	return out, nil
}

func fromJSON(doc *fleJSON) (*FLEObject, error) {
	typ := FileTypeFromString(doc.Type)
	if typ == FileTypeUnknown {
		return nil, fmt.Errorf("unknown FLE type: %q", doc.Type)
	}
	obj := NewFLEObject(typ, doc.Name)
	obj.Entry = doc.Entry
	obj.Needed = doc.Needed

	for _, s := range doc.Shdrs {
		obj.Shdrs = append(obj.Shdrs, SectionHeader(s))
	}

	for _, s := range doc.Sections {
		data, err := decodeHexBytes(s.Data)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		relocs, err := decodeRelocs(s.Relocs)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		obj.AddSection(&Section{Name: s.Name, Data: data, Relocs: relocs})
	}

	for _, s := range doc.Symbols {
		bind, err := SymbolBindFromString(s.Bind)
		if err != nil {
			return nil, fmt.Errorf("symbol %s: %w", s.Name, err)
		}
		obj.Symbols = append(obj.Symbols, &Symbol{
			Name:    s.Name,
			Bind:    bind,
			Section: s.Section,
			Offset:  s.Offset,
			Size:    s.Size,
		})
	}

	for _, p := range doc.Phdrs {
		obj.Phdrs = append(obj.Phdrs, ProgramHeader(p))
	}

	var err error
	if obj.DynRelocs, err = decodeRelocs(doc.DynRelocs); err != nil {
		return nil, err
	}

	for i := range doc.Members {
		member, err := fromJSON(&doc.Members[i])
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", doc.Members[i].Name, err)
		}
		obj.Members = append(obj.Members, member)
	}

	return obj, nil
}

// ParseFLE decodes one FLE document. The name recorded inside the
// document wins; filename is a fallback for hand-assembled inputs.
func ParseFLE(content []byte, filename string) (*FLEObject, error) {
	var doc fleJSON
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if doc.Name == "" {
		doc.Name = filename
	}
	obj, err := fromJSON(&doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return obj, nil
}

// ParseFLEFile reads and decodes an input file.
func ParseFLEFile(file *File) (*FLEObject, error) {
	return ParseFLE(file.Content, file.Name)
}
