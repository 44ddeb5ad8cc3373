// Package snomed provides concept-ontology extensions: post-coordinated
// expression construction and multi-language preferred-term lookup.
package snomed
