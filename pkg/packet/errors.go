package packet

import "fmt"

// HeaderError indicates a packet header field that does not parse as a
// recognized tag.
type HeaderError struct {
	Field string
	Value any
}

func (e HeaderError) Error() string {
	return fmt.Sprintf("malformed packet header: %s %v not recognized", e.Field, e.Value)
}

// SizeExceededError indicates content whose estimated token count exceeds
// the factory's hard size limit. Creation is not retried.
type SizeExceededError struct {
	Tokens int
	Limit  int
}

func (e SizeExceededError) Error() string {
	return fmt.Sprintf("packet exceeds maximum size: %d > %d tokens", e.Tokens, e.Limit)
}

// EncodingError indicates serialized packet text that does not parse.
type EncodingError struct {
	Err error
}

func (e EncodingError) Error() string {
	return "invalid packet encoding: " + e.Err.Error()
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

// IntegrityError indicates a checksum mismatch between a packet's stored
// checksum and a digest recomputed over its content.
type IntegrityError struct {
	ID string
}

func (e IntegrityError) Error() string {
	return "packet " + e.ID + " failed integrity check"
}

// ConsentExpiredError indicates a packet whose own consent window has
// passed. This is distinct from a recipient-scoped disclosure denial,
// which is a plain false from the consent engine.
type ConsentExpiredError struct {
	ID string
}

func (e ConsentExpiredError) Error() string {
	return "packet " + e.ID + " has expired consent"
}
