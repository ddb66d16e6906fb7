package server

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// paymentSchema validates the payment-update request body before it reaches
// the service layer.
const paymentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["member_id", "status"],
  "additionalProperties": false,
  "properties": {
    "member_id": {"type": "integer", "minimum": 1},
    "status": {"type": "string", "enum": ["successful", "failed"]}
  }
}`

var compiledPaymentSchema = jsonschema.MustCompileString("payment-update.json", paymentSchema)
