package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// EOBRecord is one analyzed claim. The assembled record is persisted as an
// opaque JSON blob; its internal shape is owned by internal/eob, not the
// storage layer.
type EOBRecord struct {
	ent.Schema
}

func (EOBRecord) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "eob_records"},
	}
}

func (EOBRecord) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("document_name").NotEmpty(),
		field.String("claim_number").NotEmpty(),
		field.Int("detect_confidence").Min(0).Max(100),
		field.JSON("record", json.RawMessage{}).
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Time("created_at").Default(time.Now),
	}
}

func (EOBRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("claim_number"),
		index.Fields("created_at"),
	}
}
