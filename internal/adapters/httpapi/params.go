package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// pathParam binds a required simple-style path parameter into dest.
// On failure it writes a 422 and returns false.
func pathParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		writeValidation(w, r, name, fmt.Sprintf("invalid path parameter: %v", err))
		return false
	}
	return true
}

// queryParam binds an optional form-style query parameter into dest.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeValidation(w, r, name, fmt.Sprintf("invalid query parameter: %v", err))
		return false
	}
	return true
}
