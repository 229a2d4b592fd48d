package dwarf

import (
	"sync"

	"github.com/antRainZ/minigdb/elf"
)

// Data is the aggregate view over every compilation and type unit found in
// an ELF image's DWARF sections. It is the entry point for looking up a
// unit by its DIE, a type unit by its 8-byte signature, or a type by name
// across the whole image.
type Data struct {
	loader *Loader

	once          sync.Once
	unitsErr      error
	units         []*Unit // compile/partial units, in .debug_info order
	typeUnits     []*Unit
	typeUnitsBySig map[uint64]*Unit
}

// NewData builds a Data aggregate over an already-open ELF image. Units
// are not parsed until first needed.
func NewData(f *elf.File) *Data {
	return &Data{loader: NewLoader(f)}
}

func (d *Data) ensureUnits() error {
	d.once.Do(func() {
		d.typeUnitsBySig = make(map[uint64]*Unit)
		if err := d.scanUnits(SecInfo, &d.units); err != nil {
			d.unitsErr = err
			return
		}
		if err := d.scanUnits(SecTypes, &d.typeUnits); err != nil {
			d.unitsErr = err
			return
		}
		for _, u := range d.typeUnits {
			d.typeUnitsBySig[u.TypeSig] = u
		}
	})
	return d.unitsErr
}

func (d *Data) scanUnits(secType SectionType, out *[]*Unit) error {
	sec, err := d.loader.Section(secType)
	if err != nil {
		return err
	}
	off := int64(0)
	for off < int64(sec.Len()) {
		u, end, err := parseUnitHeader(d, secType, off)
		if err != nil {
			return err
		}
		*out = append(*out, u)
		off = end
	}
	return nil
}

// CompilationUnits returns every compile or partial unit in .debug_info.
func (d *Data) CompilationUnits() ([]*Unit, error) {
	if err := d.ensureUnits(); err != nil {
		return nil, err
	}
	return d.units, nil
}

// TypeUnits returns every type unit in .debug_types.
func (d *Data) TypeUnits() ([]*Unit, error) {
	if err := d.ensureUnits(); err != nil {
		return nil, err
	}
	return d.typeUnits, nil
}

// dieAt resolves a DW_FORM_ref_addr offset into its target DIE by finding
// the unit whose window contains it.
func (d *Data) dieAt(secType SectionType, off int64) (*DIE, error) {
	if err := d.ensureUnits(); err != nil {
		return nil, err
	}
	units := d.units
	if secType == SecTypes {
		units = d.typeUnits
	}
	for _, u := range units {
		end := u.base + int64(u.sec.Len())
		if off >= u.base && off < end {
			return readDIE(u, off-u.base)
		}
	}
	return nil, &NotFoundError{Msg: "ref_addr offset does not fall within any known unit"}
}

// dieByTypeSig resolves a DW_FORM_ref_sig8 value to the defining DIE of
// the type unit carrying that signature.
func (d *Data) dieByTypeSig(sig uint64) (*DIE, error) {
	if err := d.ensureUnits(); err != nil {
		return nil, err
	}
	u, ok := d.typeUnitsBySig[sig]
	if !ok {
		return nil, &NotFoundError{Msg: "no type unit with the requested signature"}
	}
	return u.Type()
}

// TypeByName searches every compile unit's tree for a type DIE (struct,
// union, enum, base type, or typedef) with the given name, returning the
// first match. Nested and namespaced types are found too, since the whole
// tree under each unit's root is searched.
func (d *Data) TypeByName(name string) (*DIE, error) {
	units, err := d.CompilationUnits()
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		root, err := u.Root()
		if err != nil {
			return nil, err
		}
		if found := findTypeByName(root, name); found != nil {
			return found, nil
		}
	}
	return nil, &NotFoundError{Msg: "no type with the requested name"}
}

func findTypeByName(d *DIE, name string) *DIE {
	switch d.Tag() {
	case TagStructType, TagUnionType, TagClassType, TagEnumerationType, TagBaseType, TagTypedef:
		if d.Name() == name {
			return d
		}
	}
	it := d.Children()
	for it.Next() {
		if found := findTypeByName(it.DIE(), name); found != nil {
			return found
		}
	}
	return nil
}
