package models

// Reference data owned by the scheduling subsystem; read-only here.

type Room struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Building *string `db:"building" json:"building,omitempty"`
	Capacity *int    `db:"capacity" json:"capacity,omitempty"`
}

type Subject struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Semester string `db:"semester" json:"semester"`
}

type Semester struct {
	Code   string `db:"code" json:"code"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}
