package input

import (
	"fmt"
	"io"
	"os"

	"github.com/alexiusacademia/gotruss/internal/model"
)

// UnknownMaterialError is returned when a member names a material that is not
// in a non-empty library.
type UnknownMaterialError struct {
	Member   string
	Material string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("member %q references unknown material %q", e.Member, e.Material)
}

// Library maps material names to their properties.
type Library map[string]model.Material

// NewLibrary indexes materials by name. Later entries override earlier ones.
func NewLibrary(sets ...[]model.Material) Library {
	lib := Library{}
	for _, set := range sets {
		for _, m := range set {
			lib[m.Name] = m
		}
	}
	return lib
}

// Lookup returns the named material. An empty library resolves every name to
// model.DefaultMaterial.
func (lib Library) Lookup(name string) (model.Material, bool) {
	if len(lib) == 0 {
		return model.DefaultMaterial, true
	}
	m, ok := lib[name]
	return m, ok
}

// Resolve attaches section properties to member records.
func Resolve(records []MemberRecord, lib Library) ([]model.Member, error) {
	members := make([]model.Member, 0, len(records))
	for _, r := range records {
		mat, ok := lib.Lookup(r.Material)
		if !ok {
			return nil, &UnknownMaterialError{Member: r.Name, Material: r.Material}
		}
		members = append(members, model.Member{
			Name:         r.Name,
			NodeA:        r.NodeA,
			NodeB:        r.NodeB,
			Material:     r.Material,
			YoungModulus: mat.YoungModulus,
			Area:         mat.Area,
		})
	}
	return members, nil
}

// Files names the input files of one model. Materials is optional.
type Files struct {
	Nodes     string
	Members   string
	Supports  string
	Loads     string
	Materials string
}

// Source is one named input stream.
type Source struct {
	Name string
	R    io.Reader
}

// Sources holds the input streams of one model. Materials.R may be nil.
type Sources struct {
	Nodes     Source
	Members   Source
	Supports  Source
	Loads     Source
	Materials Source
}

// Read parses every source into a model. Extra materials are merged on top of
// the materials source.
func Read(src Sources, extra ...model.Material) (*model.Model, error) {
	nodes, err := ParseNodes(src.Nodes.R, src.Nodes.Name)
	if err != nil {
		return nil, err
	}
	records, err := ParseMembers(src.Members.R, src.Members.Name)
	if err != nil {
		return nil, err
	}
	supports, err := ParseSupports(src.Supports.R, src.Supports.Name)
	if err != nil {
		return nil, err
	}
	loads, err := ParseLoads(src.Loads.R, src.Loads.Name)
	if err != nil {
		return nil, err
	}
	var materials []model.Material
	if src.Materials.R != nil {
		if materials, err = ParseMaterials(src.Materials.R, src.Materials.Name); err != nil {
			return nil, err
		}
	}

	members, err := Resolve(records, NewLibrary(materials, extra))
	if err != nil {
		return nil, err
	}
	return &model.Model{
		Nodes:    nodes,
		Members:  members,
		Supports: supports,
		Loads:    loads,
	}, nil
}

// Load reads a model from files on disk.
func Load(files Files, extra ...model.Material) (*model.Model, error) {
	var src Sources
	open := []struct {
		path string
		dst  *Source
	}{
		{files.Nodes, &src.Nodes},
		{files.Members, &src.Members},
		{files.Supports, &src.Supports},
		{files.Loads, &src.Loads},
		{files.Materials, &src.Materials},
	}
	for i, o := range open {
		if o.path == "" && i == len(open)-1 {
			continue
		}
		f, err := os.Open(o.path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		*o.dst = Source{Name: o.path, R: f}
	}
	return Read(src, extra...)
}
