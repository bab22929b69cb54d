// Package storage provides JSON-based persistence for harvest reports.
//
// Each date range gets its own snapshot file (harvest_<from>_<to>.json, with "any"
// for an open bound). Comparing a new harvest with the stored snapshot for the
// same range tells which compilations appeared since the previous run.
// The default storage location is ~/.local/share/compilation-harvester/.
package storage
