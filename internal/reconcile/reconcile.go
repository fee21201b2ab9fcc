// Package reconcile computes the minimal set of field updates needed to
// bring each record's canonical Epic demographic fields in line with what
// can be derived from its raw source fields.
package reconcile

import (
	"epicsync/internal/parse"
	"epicsync/internal/redcap"
)

// ScreeningEvent is the only longitudinal event this service acts on.
const ScreeningEvent = "screening_arm_1"

// Raw source fields consumed by the parsers.
const (
	FieldCSZ          = "csz"
	FieldAddress      = "addr"
	FieldLanguage     = "confirm_language"
	FieldSexAtBirth   = "saab"
	FieldLatinoOrigin = "latino_origin"
)

// Canonical target fields this service is responsible for populating.
const (
	FieldPrimaryCity   = "primary_city"
	FieldPrimaryState  = "primary_state"
	FieldEpicLanguage  = "stanford_epic_lang"
	FieldEpicEthnicity = "stanford_epic_ethnicity"
	FieldEpicSex       = "stanford_epic_sex"
)

// FetchFields is the field set requested on every export: the identifier,
// the raw sources, and the current values of the targets (needed for the
// overwrite decision).
func FetchFields(idField string) []string {
	return []string{
		idField,
		FieldCSZ, FieldAddress, FieldLanguage, FieldSexAtBirth, FieldLatinoOrigin,
		FieldPrimaryCity, FieldPrimaryState, FieldEpicLanguage, FieldEpicEthnicity, FieldEpicSex,
	}
}

// Plan computes update documents for a batch of records. Pure: no I/O, no
// side effects. Per record, each target field is included iff the parsed
// value is present and either force is set or the stored value is empty.
// Records with nothing to update yield no document; output order follows
// input order. Every emitted document carries the record identifier and the
// event name.
func Plan(records []redcap.Record, idField string, force bool) []redcap.Record {
	var updates []redcap.Record
	for _, rec := range records {
		update := redcap.Record{}

		if csz, ok := parse.CityStateZip(rec[FieldCSZ]); ok {
			setIfNeeded(update, rec, FieldPrimaryCity, csz.City, force)
			setIfNeeded(update, rec, FieldPrimaryState, csz.State, force)
		}
		if lang, ok := parse.Language(rec[FieldLanguage]); ok {
			setIfNeeded(update, rec, FieldEpicLanguage, lang, force)
		}
		setIfNeeded(update, rec, FieldEpicEthnicity, parse.Ethnicity(rec[FieldLatinoOrigin]), force)
		setIfNeeded(update, rec, FieldEpicSex, parse.Sex(rec[FieldSexAtBirth]), force)

		if len(update) == 0 {
			continue
		}
		update[idField] = rec[idField]
		update[redcap.EventNameField] = ScreeningEvent
		updates = append(updates, update)
	}
	return updates
}

// setIfNeeded applies the overwrite policy for one field. value is known to
// be non-empty for the total parsers; the check keeps the rule uniform.
func setIfNeeded(update, rec redcap.Record, field, value string, force bool) {
	if value == "" {
		return
	}
	if force || rec[field] == "" {
		update[field] = value
	}
}
