package reindex

import (
	"strings"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// EntryOf derives the text index entry for one detail record: one flattened
// string per project and per IP asset, matching the form of the published
// index so locally rebuilt entries score identically to fetched ones.
func EntryOf(detail *core.OrganizationDetail) *core.TextEntry {
	entry := &core.TextEntry{
		Projects: make([]string, 0, len(detail.Projects)),
		RIDs:     make([]string, 0, len(detail.RIDs)),
	}
	for _, project := range detail.Projects {
		entry.Projects = append(entry.Projects, flattenText(project.Name, project.Abstract))
	}
	for _, rid := range detail.RIDs {
		entry.RIDs = append(entry.RIDs, flattenText(rid.Name, rid.Abstract))
	}
	return entry
}

// flattenText joins a record's name and abstract into one searchable string,
// collapsing whitespace runs and lowercasing to the stored form.
func flattenText(name, abstract string) string {
	return strings.ToLower(strings.Join(strings.Fields(name+" "+abstract), " "))
}
