package phi

// FieldConfig maps a collection to the field paths that contain Protected
// Health Information and must be encrypted at rest. Display-name fields are
// protected by role-based access control and are intentionally not listed, to
// avoid double encryption overhead on high-read paths.
type FieldConfig struct {
	Collection string
	Fields     []string
}

// DefaultFields returns the PHI field configuration for the collections that
// carry direct patient identifiers or clinical narrative.
func DefaultFields() []FieldConfig {
	return []FieldConfig{
		{
			Collection: "patients",
			Fields:     []string{"phone", "email", "address"},
		},
		{
			Collection: "users",
			Fields:     []string{"phone", "email"},
		},
		{
			// Sub-fields of the record's structured payload.
			Collection: "records",
			Fields:     []string{"complaint", "diagnosis", "notes", "medications"},
		},
	}
}

// PayloadFields returns the encrypted field names for a collection, or nil
// when the collection carries no registered PHI fields.
func PayloadFields(collection string) []string {
	for _, c := range DefaultFields() {
		if c.Collection == collection {
			return c.Fields
		}
	}
	return nil
}
