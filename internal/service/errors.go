package service

// FieldErrors maps request field names to one or more validation
// messages, the shape clients need to render inline errors. It doubles
// as an error value so services can return it through the usual error
// path.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	return "validation failed"
}

// Add appends a message for a field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// UploadError wraps a media provider failure so handlers can surface
// the provider's message with an upstream-failure status.
type UploadError struct {
	err error
}

func NewUploadError(err error) *UploadError {
	return &UploadError{err: err}
}

func (e *UploadError) Error() string {
	return e.err.Error()
}

func (e *UploadError) Unwrap() error {
	return e.err
}
