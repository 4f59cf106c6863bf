package chat

import (
	"errors"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas. Three widget payload shapes are still live: a bare
// message string, a wrapped {"message": {"text": ...}} object, and the oldest
// top-level {"text": ...} form.
const classifySchema = `{
	"type": "object",
	"anyOf": [
		{"required": ["message"]},
		{"required": ["text"]}
	],
	"properties": {
		"message": {
			"oneOf": [
				{"type": "string", "minLength": 1},
				{
					"type": "object",
					"required": ["text"],
					"properties": {"text": {"type": "string", "minLength": 1}}
				}
			]
		},
		"text": {"type": "string", "minLength": 1},
		"context": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string", "enum": ["user", "assistant", "system"]},
					"content": {"type": "string"}
				}
			}
		},
		"ticketId": {"type": "string"}
	}
}`

const answerSchema = `{
	"type": "object",
	"required": ["intent"],
	"anyOf": [
		{"required": ["message"]},
		{"required": ["userMessage"]}
	],
	"properties": {
		"intent": {"type": "string", "minLength": 1},
		"message": {"type": "string", "minLength": 1},
		"userMessage": {"type": "string", "minLength": 1},
		"parameters": {"type": "object"},
		"language": {"type": "string"},
		"sizeCharts": {"type": "string"},
		"shopifyData": {"type": "object"},
		"context": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["role", "content"],
				"properties": {
					"role": {"type": "string"},
					"content": {"type": "string"}
				}
			}
		}
	}
}`

const validateAddressSchema = `{
	"type": "object",
	"required": ["address"],
	"properties": {
		"address": {"type": "string", "minLength": 1}
	}
}`

const createTicketSchema = `{
	"type": "object",
	"required": ["shopId"],
	"properties": {
		"shopId": {"type": "string", "minLength": 1}
	}
}`

const ticketMessageSchema = `{
	"type": "object",
	"required": ["sender", "text"],
	"properties": {
		"sender": {"type": "string", "enum": ["user", "bot"]},
		"text": {"type": "string", "minLength": 1}
	}
}`

var (
	classifyLoader        = gojsonschema.NewStringLoader(classifySchema)
	answerLoader          = gojsonschema.NewStringLoader(answerSchema)
	validateAddressLoader = gojsonschema.NewStringLoader(validateAddressSchema)
	createTicketLoader    = gojsonschema.NewStringLoader(createTicketSchema)
	ticketMessageLoader   = gojsonschema.NewStringLoader(ticketMessageSchema)
)

// validateBody checks raw JSON against a schema and folds all violations into
// one error message.
func validateBody(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.New("invalid JSON body")
	}
	if result.Valid() {
		return nil
	}
	var parts []string
	for _, desc := range result.Errors() {
		parts = append(parts, desc.String())
	}
	return errors.New(strings.Join(parts, "; "))
}
