package models

import "strings"

// Catalog names a master-data sheet.
type Catalog string

const (
	CatalogDevices     Catalog = "DM_THIETBI"
	CatalogSuppliers   Catalog = "DM_NCC"
	CatalogBrands      Catalog = "DM_HANGSX"
	CatalogCountries   Catalog = "DM_NUOCSX"
	CatalogUnits       Catalog = "DM_DVT"
	CatalogDepartments Catalog = "DM_KHOAPHONG"
	CatalogSections    Catalog = "DM_BOPHAN"
)

// CatalogFields lists the column keys, in sheet order after the serial column.
var CatalogFields = map[Catalog][]string{
	CatalogDevices:     {"code", "name", "details", "unit", "brand", "country", "model", "category"},
	CatalogSuppliers:   {"name", "address", "tax_code", "phone", "note"},
	CatalogBrands:      {"name"},
	CatalogCountries:   {"name"},
	CatalogUnits:       {"name"},
	CatalogDepartments: {"name"},
	CatalogSections:    {"name"},
}

// ParseCatalog accepts the sheet name in any case.
func ParseCatalog(raw string) (Catalog, bool) {
	c := Catalog(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := CatalogFields[c]
	return c, ok
}

// CatalogEntry is one master-data row keyed by field name.
type CatalogEntry map[string]string

// DeviceTemplate is a DM_THIETBI row used to pre-fill a ticket item.
type DeviceTemplate struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Details      string `json:"details"`
	Unit         string `json:"unit"`
	Manufacturer string `json:"manufacturer"`
	Country      string `json:"country"`
	ModelSerial  string `json:"model_serial"`
}
