package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// maxBodyBytes caps JSON and form bodies for query endpoints.
const maxBodyBytes = 1 << 20

// Params collects string parameters from the query string, a urlencoded
// form or a flat JSON object body. Later sources override earlier ones.
type Params map[string]string

// Get returns the value for key, or "".
func (p Params) Get(key string) string { return p[key] }

// ReadParams reads every parameter source of r.
func ReadParams(r *http.Request) (Params, error) {
	p := Params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	if r.Body == nil || r.Method == http.MethodGet {
		return p, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body map[string]any
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		for k, v := range body {
			switch t := v.(type) {
			case string:
				p[k] = t
			case nil:
			default:
				p[k] = fmt.Sprint(t)
			}
		}
	case "application/x-www-form-urlencoded":
		r.Body = io.NopCloser(io.LimitReader(r.Body, maxBodyBytes))
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form body: %w", err)
		}
		for k, v := range r.PostForm {
			if len(v) > 0 {
				p[k] = v[0]
			}
		}
	}
	return p, nil
}
