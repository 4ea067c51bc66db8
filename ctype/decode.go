package ctype

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/wippyai/clayout/errors"
)

// Format selects the encoding of a type-tree document.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the document format from a file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Decl is one top-level declaration of a document.
type Decl struct {
	Type Type
	Name string
}

// File is a decoded type-tree document.
type File struct {
	tags  map[string]Type
	Decls []Decl
}

// Lookup returns the top-level declaration or tagged struct/union named name.
func (f *File) Lookup(name string) (Type, bool) {
	for _, d := range f.Decls {
		if d.Name == name {
			return d.Type, true
		}
	}
	t, ok := f.tags[name]
	return t, ok
}

type fileDoc struct {
	Types []nodeDoc `json:"types" toml:"types"`
}

// nodeDoc is the wire shape of a type node. A node with no kind and a name is
// a builtin primitive if the name is one, otherwise a reference to a tag.
type nodeDoc struct {
	Elem    *nodeDoc    `json:"elem,omitempty" toml:"elem"`
	Base    *nodeDoc    `json:"base,omitempty" toml:"base"`
	Kind    string      `json:"kind,omitempty" toml:"kind"`
	Name    string      `json:"name,omitempty" toml:"name"`
	Members []memberDoc `json:"members,omitempty" toml:"members"`
	Dims    []uint64    `json:"dims,omitempty" toml:"dims"`
	Size    uint64      `json:"size,omitempty" toml:"size"`
	Align   uint64      `json:"align,omitempty" toml:"align"`
	Pack    uint64      `json:"pack,omitempty" toml:"pack"`
	Aligned uint64      `json:"aligned,omitempty" toml:"aligned"`
	Width   uint64      `json:"width,omitempty" toml:"width"`
	Word    bool        `json:"word,omitempty" toml:"word"`
	Packed  bool        `json:"packed,omitempty" toml:"packed"`
}

type memberDoc struct {
	Type    nodeDoc `json:"type" toml:"type"`
	Name    string  `json:"name,omitempty" toml:"name"`
	Aligned uint64  `json:"aligned,omitempty" toml:"aligned"`
	Packed  bool    `json:"packed,omitempty" toml:"packed"`
}

// DecodeFile reads and decodes the document at path.
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()
	return Decode(f, FormatFor(path))
}

// Decode decodes a type-tree document. Tagged structs and unions may be
// referenced by name after their declaration; references to names that are
// never declared decode to *Forward.
func Decode(r io.Reader, format Format) (*File, error) {
	var doc fileDoc
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errors.ParseFailed("toml type document", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Detail("unknown key %q", undecoded[0].String()).
				Build()
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.ParseFailed("json type document", err)
		}
	default:
		return nil, errors.InvalidInput(errors.PhaseParse, fmt.Sprintf("unknown format %q", format))
	}

	d := &decoder{
		tags:     make(map[string]Type),
		forwards: make(map[string]*Forward),
	}
	file := &File{tags: d.tags}
	for i := range doc.Types {
		n := &doc.Types[i]
		name := n.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		t, err := d.node(n, []string{name})
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, Decl{Name: name, Type: t})
	}
	return file, nil
}

type decoder struct {
	tags     map[string]Type
	forwards map[string]*Forward
}

func (d *decoder) fail(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Path(path...).
		Detail(format, args...).
		Build()
}

func (d *decoder) toInt64(path []string, field string, v uint64) (int64, error) {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(path...).
			Detail("%s %d out of range", field, v).
			Cause(err).
			Build()
	}
	return n, nil
}

func (d *decoder) node(n *nodeDoc, path []string) (Type, error) {
	if n == nil {
		return nil, d.fail(path, "missing type")
	}
	switch n.Kind {
	case "":
		if n.Name == "" {
			return nil, d.fail(path, "type needs a kind or a name")
		}
		if p, ok := Builtin(n.Name); ok {
			return p, nil
		}
		return d.ref(n.Name), nil
	case "ref":
		if n.Name == "" {
			return nil, d.fail(path, "ref needs a name")
		}
		return d.ref(n.Name), nil
	case "pointer":
		name := n.Name
		if name == "" {
			name = "void *"
		}
		return Pointer(name), nil
	}

	kind, ok := parseKind(n.Kind)
	if !ok {
		return nil, d.fail(path, "unknown kind %q", n.Kind)
	}

	switch kind {
	case KindPrimitive:
		return d.primitive(n, path)

	case KindStruct:
		s := &Struct{Name: n.Name}
		d.declare(n.Name, s)
		attrs, err := d.attrs(path, n.Packed, n.Aligned)
		if err != nil {
			return nil, err
		}
		s.Attrs = attrs
		if s.Pack, err = d.toInt64(path, "pack", n.Pack); err != nil {
			return nil, err
		}
		if s.Members, err = d.members(n.Members, path); err != nil {
			return nil, err
		}
		return s, nil

	case KindUnion:
		u := &Union{Name: n.Name}
		d.declare(n.Name, u)
		attrs, err := d.attrs(path, n.Packed, n.Aligned)
		if err != nil {
			return nil, err
		}
		u.Attrs = attrs
		if n.Pack != 0 {
			return nil, d.fail(path, "pack applies to structs only")
		}
		if u.Members, err = d.members(n.Members, path); err != nil {
			return nil, err
		}
		return u, nil

	case KindArray:
		elem, err := d.node(n.Elem, sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		if len(n.Dims) == 0 {
			return nil, d.fail(path, "array needs at least one dimension")
		}
		dims := make([]int64, len(n.Dims))
		for i, v := range n.Dims {
			if dims[i], err = d.toInt64(path, "dimension", v); err != nil {
				return nil, err
			}
		}
		return &Array{Elem: elem, Dims: dims}, nil

	case KindFlexibleArray:
		elem, err := d.node(n.Elem, sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return &FlexibleArray{Elem: elem}, nil

	case KindBitfield:
		base, err := d.node(n.Base, path)
		if err != nil {
			return nil, err
		}
		p, ok := base.(*Primitive)
		if !ok {
			return nil, d.fail(path, "bitfield base must be a primitive, got %s", base)
		}
		width, err := d.toInt64(path, "width", n.Width)
		if err != nil {
			return nil, err
		}
		return &Bitfield{Base: p, Width: width}, nil

	case KindForward:
		return d.ref(n.Name), nil
	}

	return nil, d.fail(path, "unhandled kind %s", kind)
}

func (d *decoder) primitive(n *nodeDoc, path []string) (Type, error) {
	if n.Size == 0 && !n.Word {
		if p, ok := Builtin(n.Name); ok {
			return p, nil
		}
		return nil, d.fail(path, "primitive %q needs a size", n.Name)
	}
	size, err := d.toInt64(path, "size", n.Size)
	if err != nil {
		return nil, err
	}
	align, err := d.toInt64(path, "align", n.Align)
	if err != nil {
		return nil, err
	}
	return &Primitive{Name: n.Name, Size: size, Align: align, Word: n.Word}, nil
}

func (d *decoder) members(docs []memberDoc, path []string) ([]Member, error) {
	out := make([]Member, 0, len(docs))
	for i := range docs {
		m := &docs[i]
		seg := m.Name
		if seg == "" {
			seg = "#" + strconv.Itoa(i)
		}
		mpath := sub(path, seg)
		t, err := d.node(&m.Type, mpath)
		if err != nil {
			return nil, err
		}
		attrs, err := d.attrs(mpath, m.Packed, m.Aligned)
		if err != nil {
			return nil, err
		}
		out = append(out, Member{Name: m.Name, Type: t, Attrs: attrs})
	}
	return out, nil
}

func (d *decoder) attrs(path []string, packed bool, aligned uint64) (Attrs, error) {
	n, err := d.toInt64(path, "aligned", aligned)
	if err != nil {
		return Attrs{}, err
	}
	return Attrs{Packed: packed, Aligned: n}, nil
}

func (d *decoder) declare(name string, t Type) {
	if name != "" {
		d.tags[name] = t
	}
}

func (d *decoder) ref(name string) Type {
	if t, ok := d.tags[name]; ok {
		return t
	}
	if f, ok := d.forwards[name]; ok {
		return f
	}
	f := &Forward{Name: name}
	d.forwards[name] = f
	return f
}

func sub(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
