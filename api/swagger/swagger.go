// Package swagger embeds the OpenAPI document served by the HTTP API.
package swagger

import _ "embed"

// Document is the Swagger 2.0 description of the REST API.
//
//go:embed crm.swagger.json
var Document []byte
