package shared

import "strings"

// Signature is a write-once captured signature (usually a data URL of the drawn image).
// The zero value means "not signed".
type Signature string

// IsSet reports whether a signature has been captured
func (s Signature) IsSet() bool {
	return s != ""
}

// Ptr returns nil for an unset signature so it maps onto a NULL column
func (s Signature) Ptr() *string {
	if !s.IsSet() {
		return nil
	}
	v := string(s)
	return &v
}

// SignatureFromPtr is the inverse of Ptr
func SignatureFromPtr(p *string) Signature {
	if p == nil {
		return ""
	}
	return Signature(*p)
}

// Sign sets field to value exactly once. Signing an already signed field
// returns AlreadySigned and leaves the field untouched.
func Sign(field *Signature, value, entity, id string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return Validation("signature for %s %s is empty", entity, id)
	}
	if field.IsSet() {
		return AlreadySigned(entity, id)
	}
	*field = Signature(value)
	return nil
}
