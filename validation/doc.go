// Package validation checks request input before it reaches the engine.
//
// Struct tag validation covers request bodies:
//
//	type DiacritizeRequest struct {
//	    Text string `json:"text" validate:"required,utf8,max=10000"`
//	}
//	err := validation.Validate(req)
//
// Programmatic validation collects field errors for flags and query values:
//
//	v := validation.New()
//	v.Range("limit", limit, 1, 64)
//	err := v.Validate()
package validation
