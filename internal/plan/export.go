package plan

import (
	"cdm-mapper/internal/mapping"
)

// Document exports the accepted suggestions as a Mapping Document in
// registry order. Categorical fields always carry a transformation, even
// when no substitution was proposed.
func (p *Plan) Document() *mapping.Document {
	doc := mapping.NewDocument()
	if p == nil {
		return doc
	}

	for _, s := range p.Suggestions {
		entry := mapping.Entry{CDMField: s.Field}

		if s.Categorical || len(s.Values) > 0 {
			vm := make(map[string]string, len(s.Values))
			for _, v := range s.Values {
				vm[v.Observed] = v.Allowed
			}

			entry.Transformation = &mapping.Transformation{ValueMapping: vm}
		}

		doc.Set(s.Column, entry)
	}

	return doc
}
