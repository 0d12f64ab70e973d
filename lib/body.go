package lib

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ExtractAndValidateBody decodes a JSON request body into T and runs its
// validation tags. Unknown fields are rejected.
func ExtractAndValidateBody[T any](r *http.Request) (*T, error) {
	var body T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if err := validate.Struct(&body); err != nil {
		return nil, err
	}
	return &body, nil
}
