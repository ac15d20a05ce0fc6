package domain

import "time"

// Asset is a fungible unit a deal can be denominated in. Deals reference
// assets by code; custody amounts are integers in the asset's smallest unit.
type Asset struct {
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Decimals int32     `json:"decimals"`
	AddedOn  time.Time `json:"added_on"`
}
