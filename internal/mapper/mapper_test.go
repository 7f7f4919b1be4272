// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package mapper

import (
	"errors"
	"reflect"
	"testing"
	"time"

	rpcerrors "odoolink/cli/internal/errors"
	"odoolink/cli/internal/xmlrpc"
)

type contact struct {
	ID      int64
	Name    string
	Active  bool
	Credit  float64
	Updated time.Time
	Company Many2One
}

var contactSchema = Schema[contact]{
	IntField("id", func(c *contact) *int64 { return &c.ID }).AsReadOnly(),
	StringField("name", func(c *contact) *string { return &c.Name }),
	BoolField("active", func(c *contact) *bool { return &c.Active }),
	FloatField("credit", func(c *contact) *float64 { return &c.Credit }),
	TimeField("updated", func(c *contact) *time.Time { return &c.Updated }),
	Many2OneField("company_id", func(c *contact) *Many2One { return &c.Company }),
}

func TestToStructure(t *testing.T) {
	c := contact{
		ID:      9,
		Name:    "Ada",
		Active:  true,
		Credit:  12.5,
		Updated: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Company: Many2One{ID: 4, Name: "Acme"},
	}
	got, err := ToStructure(&c, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := xmlrpc.Struct{
		{Name: "name", Value: xmlrpc.String("Ada")},
		{Name: "active", Value: xmlrpc.Bool(true)},
		{Name: "credit", Value: xmlrpc.Double(12.5)},
		{Name: "updated", Value: xmlrpc.String("2024-03-01 10:00:00")},
		{Name: "company_id", Value: xmlrpc.Int(4)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestToStructureKeepsSchemaOrder(t *testing.T) {
	got, err := ToStructure(&contact{Name: "Ada"}, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.Names(), contactSchema.Writable().Names()) {
		t.Fatalf("member order %v, want %v", got.Names(), contactSchema.Writable().Names())
	}
}

func TestToStructureEmptyValues(t *testing.T) {
	got, err := ToStructure(&contact{}, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"name", "updated", "company_id"} {
		if v, _ := got.Get(name); v != xmlrpc.Bool(false) {
			t.Fatalf("expected %s to be sent as false, got %#v", name, v)
		}
	}
}

func TestFromStructure(t *testing.T) {
	m := map[string]any{
		"id":         int64(9),
		"name":       "Ada",
		"active":     true,
		"credit":     int64(12),
		"updated":    "2024-03-01 10:00:00",
		"company_id": []any{int64(4), "Acme"},
		"unknown":    "ignored",
	}
	got, err := FromStructure(m, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := contact{
		ID:      9,
		Name:    "Ada",
		Active:  true,
		Credit:  12,
		Updated: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Company: Many2One{ID: 4, Name: "Acme"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFromStructureFalseMeansEmpty(t *testing.T) {
	m := map[string]any{
		"name":       false,
		"credit":     false,
		"updated":    false,
		"company_id": false,
		"active":     false,
	}
	got, err := FromStructure(m, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, contact{}) {
		t.Fatalf("expected zero entity, got %+v", got)
	}
}

func TestFromStructureMissingFieldsKeepZero(t *testing.T) {
	got, err := FromStructure(map[string]any{"name": "Only"}, contactSchema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Only" || got.ID != 0 || got.Company.IsSet() {
		t.Fatalf("unexpected entity %+v", got)
	}
}

func TestFromStructureTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"string field gets int", "name", int64(3)},
		{"int field gets string", "id", "x"},
		{"bool field gets string", "active", "yes"},
		{"float field gets string", "credit", "1.5"},
		{"time field gets bad text", "updated", "yesterday"},
		{"many2one gets short pair", "company_id", []any{int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromStructure(map[string]any{tt.field: tt.value}, contactSchema)
			if !errors.Is(err, rpcerrors.ErrFieldConversion) {
				t.Fatalf("expected field conversion error, got %v", err)
			}
			var fe *rpcerrors.FieldError
			if !errors.As(err, &fe) || fe.Field != tt.field {
				t.Fatalf("expected error for field %s, got %v", tt.field, err)
			}
		})
	}
}

func TestSchemaNames(t *testing.T) {
	want := []string{"id", "name", "active", "credit", "updated", "company_id"}
	if got := contactSchema.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
	if got := len(contactSchema.Writable()); got != 5 {
		t.Fatalf("expected 5 writable fields, got %d", got)
	}
}
