package model

// Proveedor is a supplier a product can be linked to.
type Proveedor struct {
	IDProveedor int64   `gorm:"column:idproveedor;primaryKey;autoIncrement"`
	Nombre      string  `gorm:"column:nombre;not null"`
	Telefono    *string `gorm:"column:telefono"`
	Email       *string `gorm:"column:email"`
	Direccion   *string `gorm:"column:direccion"`
	CUIT        *string `gorm:"column:cuit;uniqueIndex"`
	Estado      bool    `gorm:"column:estado;not null;default:true"`
}

// TableName: without it GORM would create "proveedors".
func (Proveedor) TableName() string { return "proveedores" }
