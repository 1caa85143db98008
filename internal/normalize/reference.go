package normalize

import (
	"strconv"

	"fedcite/internal/models"
)

// DocumentInfo is what a record inherits from its source document.
type DocumentInfo struct {
	Agencies            []string
	RegulationIDNumbers []string
}

// Reference bundles the lookup data Normalize enriches records with. It is
// built once per run and only read afterwards.
type Reference struct {
	Documents map[string]DocumentInfo
	Entities  map[string]string
}

// BuildReference resolves each document's agencies to top-level names. An
// agency with a parent is named after the parent through agencyNames, falling
// back to the parent id itself; an agency without one keeps its raw name.
func BuildReference(docs []models.Document, agencyNames, entityAliases map[string]string) Reference {
	ref := Reference{
		Documents: make(map[string]DocumentInfo, len(docs)),
		Entities:  entityAliases,
	}
	if ref.Entities == nil {
		ref.Entities = map[string]string{}
	}
	for _, d := range docs {
		names := make([]string, 0, len(d.Agencies))
		seen := map[string]struct{}{}
		for _, a := range d.Agencies {
			name := agencyName(a, agencyNames)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		rins := d.RegulationIDNumbers
		if rins == nil {
			rins = []string{}
		}
		ref.Documents[d.DocumentNumber] = DocumentInfo{Agencies: names, RegulationIDNumbers: rins}
	}
	return ref
}

func agencyName(a models.Agency, agencyNames map[string]string) string {
	if a.ParentID == nil {
		return a.RawName
	}
	id := strconv.Itoa(*a.ParentID)
	if name, ok := agencyNames[id]; ok {
		return name
	}
	return id
}

func (r Reference) canonical(name string) string {
	if name == "" {
		return name
	}
	if c, ok := r.Entities[name]; ok {
		return c
	}
	return name
}
