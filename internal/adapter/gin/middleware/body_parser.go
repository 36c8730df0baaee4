package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "auth-service/pkg/errors"
	"auth-service/pkg/security"
)

// Context keys set by the body parsing middleware.
const (
	BodyKey  = "body"
	FilesKey = "files"
)

// Client-facing messages of the body parsing middleware.
const (
	MsgPayloadTooLarge = "Request entity too large"
	MsgInvalidJSON     = "Invalid JSON body"
	MsgInvalidForm     = "Invalid form body"
	MsgInvalidBody     = "Invalid request body"
)

// BodyParser parses JSON and URL-encoded request bodies of at most limit
// bytes and stores the result under BodyKey. JSON bodies must be an object
// or an array; an empty JSON body parses as an empty object. Other content
// types pass through untouched.
func BodyParser(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parse func([]byte) (any, error)
		switch mt := mediaType(c.Request); {
		case mt == "application/json" || strings.HasSuffix(mt, "+json"):
			parse = parseJSON
		case mt == "application/x-www-form-urlencoded":
			parse = parseForm
		default:
			c.Next()
			return
		}

		raw, err := readBody(c, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		body, err := parse(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(BodyKey, body)
		c.Next()
	}
}

// Body returns the parsed request body, or an empty object when nothing was parsed.
func Body(c *gin.Context) any {
	if v, ok := c.Get(BodyKey); ok {
		return v
	}
	return map[string]any{}
}

// BindBody decodes the parsed request body into dst.
func BindBody(c *gin.Context, dst any) error {
	raw, err := json.Marshal(Body(c))
	if err != nil {
		return apperrors.BadRequest(MsgInvalidBody)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.BadRequest(MsgInvalidBody)
	}
	return nil
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

func readBody(c *gin.Context, limit int64) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil
	}

	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.PayloadTooLarge(MsgPayloadTooLarge)
		}
		return nil, apperrors.BadRequest(MsgInvalidBody)
	}
	return raw, nil
}

func parseJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, apperrors.BadRequest(MsgInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, apperrors.BadRequest(MsgInvalidJSON)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperrors.BadRequest(MsgInvalidJSON)
	}
	return body, nil
}

func parseForm(raw []byte) (any, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, apperrors.BadRequest(MsgInvalidForm)
	}
	return nestForm(values), nil
}

// nestForm turns bracket-notation form keys into nested objects:
// "user[name]=al" becomes {"user":{"name":"al"}} and "tags[]=a&tags[]=b"
// becomes {"tags":["a","b"]}. Repeated plain keys collect into an array.
// When a plain key and a bracketed key share a name, the plain values are
// kept under positional keys: "a=1&a[b]=2" becomes {"a":{"0":"1","b":"2"}}.
func nestForm(values map[string][]string) map[string]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, k := range keys {
		segments := security.SplitFormKey(k)
		for _, v := range values[k] {
			assignFormValue(root, segments, v)
		}
	}
	return root
}

func assignFormValue(node map[string]any, segments []string, value string) {
	key := segments[0]
	rest := segments[1:]

	if len(rest) == 0 || (len(rest) == 1 && rest[0] == "") {
		switch existing := node[key].(type) {
		case nil:
			if len(rest) == 0 {
				node[key] = value
			} else {
				node[key] = []any{value}
			}
		case string:
			node[key] = []any{existing, value}
		case []any:
			node[key] = append(existing, value)
		case map[string]any:
			existing[nextIndex(existing)] = value
		}
		return
	}

	child, ok := node[key].(map[string]any)
	if !ok {
		child = indexed(node[key])
		node[key] = child
	}
	assignFormValue(child, rest, value)
}

// indexed converts a value already stored under a key into an object keyed
// by position.
func indexed(v any) map[string]any {
	m := map[string]any{}
	switch v := v.(type) {
	case string:
		m["0"] = v
	case []any:
		for i, item := range v {
			m[strconv.Itoa(i)] = item
		}
	}
	return m
}

func nextIndex(m map[string]any) string {
	for i := len(m); ; i++ {
		if _, ok := m[strconv.Itoa(i)]; !ok {
			return strconv.Itoa(i)
		}
	}
}
