package healthsdk

import (
	"errors"
)

var (
	ErrNoBaseURL   = errors.New("sdk: base url missing")
	ErrInvalidURL  = errors.New("sdk: base url must be an absolute http(s) url")
	ErrInvalidJSON = errors.New("sdk: response is not valid json")
)
