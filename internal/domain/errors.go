package domain

// BusinessError is a domain-rule violation. It carries a human-readable
// message and is never retried automatically.
type BusinessError struct {
	msg string
}

func (e *BusinessError) Error() string {
	return e.msg
}

func NewBusinessError(msg string) error {
	return &BusinessError{msg: msg}
}
