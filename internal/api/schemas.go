package api

const proposalSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["bank_transaction_id", "invoice_ids"],
  "properties": {
    "bank_transaction_id": {"type": "integer", "minimum": 1},
    "invoice_ids": {"type": "array", "minItems": 1, "items": {"type": "integer", "minimum": 1}},
    "proxy_amount": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"},
    "note": {"type": "string", "maxLength": 1000}
  }
}`

const createHandshakesSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["bank_transaction_id", "allocations", "actor"],
  "properties": {
    "bank_transaction_id": {"type": "integer", "minimum": 1},
    "allocations": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["invoice_id", "bank_amount_applied"],
        "properties": {
          "invoice_id": {"type": "integer", "minimum": 1},
          "bank_amount_applied": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
          "proxy_amount": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"}
        }
      }
    },
    "note": {"type": "string", "maxLength": 1000},
    "actor": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

const upsertSettlementSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["show_id", "artist", "amount_due", "actor"],
  "properties": {
    "show_id": {"type": "integer", "minimum": 1},
    "artist": {"type": "string", "minLength": 1, "maxLength": 255},
    "amount_due": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
    "amount_paid": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "payment_date": {"type": "string", "format": "date"},
    "payment_reference": {"type": "string", "maxLength": 255},
    "payment_method": {"type": "string", "maxLength": 100},
    "notes": {"type": "string", "maxLength": 2000},
    "actor": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

const confirmSettlementSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["actor"],
  "properties": {
    "actor": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`

const createOutgoingSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["show_id", "payment_type", "amount", "created_by"],
  "properties": {
    "show_id": {"type": "integer", "minimum": 1},
    "payment_type": {"type": "string", "minLength": 1, "maxLength": 100},
    "description": {"type": "string", "maxLength": 1000},
    "amount": {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "currency_code": {"type": "string", "pattern": "^[A-Z]{3}$"},
    "payment_date": {"type": "string", "format": "date"},
    "payee": {"type": "string", "maxLength": 255},
    "bank_reference": {"type": "string", "maxLength": 255},
    "bank_id": {"type": "integer", "minimum": 1},
    "notes": {"type": "string", "maxLength": 2000},
    "created_by": {"type": "string", "minLength": 1, "maxLength": 255}
  }
}`
