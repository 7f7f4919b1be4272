// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package repository

import (
	"time"

	"odoolink/cli/internal/mapper"
)

// PartnerModel is the remote model of contacts and companies.
const PartnerModel = "res.partner"

// Partner is a contact or company.
type Partner struct {
	ID        int64           `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Email     string          `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string          `json:"phone,omitempty" yaml:"phone,omitempty"`
	IsCompany bool            `json:"is_company" yaml:"is_company"`
	Parent    mapper.Many2One `json:"parent" yaml:"parent"`
	WriteDate time.Time       `json:"write_date" yaml:"write_date"`
}

// PartnerSchema maps Partner to res.partner fields.
var PartnerSchema = mapper.Schema[Partner]{
	mapper.IntField("id", func(p *Partner) *int64 { return &p.ID }).AsReadOnly(),
	mapper.StringField("name", func(p *Partner) *string { return &p.Name }),
	mapper.StringField("email", func(p *Partner) *string { return &p.Email }),
	mapper.StringField("phone", func(p *Partner) *string { return &p.Phone }),
	mapper.BoolField("is_company", func(p *Partner) *bool { return &p.IsCompany }),
	mapper.Many2OneField("parent_id", func(p *Partner) *mapper.Many2One { return &p.Parent }),
	mapper.TimeField("write_date", func(p *Partner) *time.Time { return &p.WriteDate }).AsReadOnly(),
}

// NewPartners returns a repository of res.partner records.
func NewPartners(client Client) *Repository[Partner] {
	return New(client, PartnerModel, PartnerSchema)
}
