// Package api embeds the HTTP API description served at /openapi.json.
package api

import _ "embed"

// OpenAPI is the OpenAPI 3 document of the HTTP API.
//
//go:embed openapi.json
var OpenAPI []byte
