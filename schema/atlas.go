package schema

import (
	atlas "ariga.io/atlas/sql/schema"
)

// FromAtlas converts an Atlas schema graph into the plain model used by the
// generation pipeline. Projects that already inspect their database with
// Atlas can feed its output straight into generation instead of going
// through the introspect package.
func FromAtlas(as *atlas.Schema) *Schema {
	s := &Schema{Name: as.Name}
	for _, at := range as.Tables {
		t := &Table{
			Schema: as.Name,
			Name:   at.Name,
		}
		for _, attr := range at.Attrs {
			if c, ok := attr.(*atlas.Comment); ok {
				t.Comment = c.Text
			}
		}
		for _, ac := range at.Columns {
			c := &Column{
				Name:       ac.Name,
				Type:       ac.Type.Raw,
				Nullable:   ac.Type.Null,
				HasDefault: ac.Default != nil,
			}
			for _, attr := range ac.Attrs {
				if cm, ok := attr.(*atlas.Comment); ok {
					c.Comment = cm.Text
				}
			}
			if et, ok := ac.Type.Type.(*atlas.EnumType); ok {
				c.Enum = et.T
				if s.Enum(et.T) == nil {
					s.Enums = append(s.Enums, &Enum{Schema: as.Name, Name: et.T, Values: et.Values})
				}
			}
			t.Columns = append(t.Columns, c)
		}
		if at.PrimaryKey != nil {
			for _, part := range at.PrimaryKey.Parts {
				if part.C != nil {
					t.PrimaryKey = append(t.PrimaryKey, part.C.Name)
				}
			}
		}
		for _, fk := range at.ForeignKeys {
			out := &ForeignKey{Name: fk.Symbol}
			for _, c := range fk.Columns {
				out.Columns = append(out.Columns, c.Name)
			}
			if fk.RefTable != nil {
				out.RefTable = fk.RefTable.Name
			}
			for _, c := range fk.RefColumns {
				out.RefColumns = append(out.RefColumns, c.Name)
			}
			t.ForeignKeys = append(t.ForeignKeys, out)
		}
		s.Tables = append(s.Tables, t)
	}
	s.Sort()
	return s
}
