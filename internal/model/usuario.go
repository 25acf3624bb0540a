package model

import (
	"time"
)

// Usuario stores system users. Rol is free text in the schema; the API uses
// "administrador", "encargado" and "vendedor".
type Usuario struct {
	IDUsuario     int64      `gorm:"column:idusuario;primaryKey;autoIncrement"`
	Username      string     `gorm:"column:username;type:varchar(150);uniqueIndex;not null"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	Email         *string    `gorm:"column:email;type:varchar(255)"`
	DNIEmpleado   *string    `gorm:"column:dni_empleado;uniqueIndex"`
	Rol           *string    `gorm:"column:rol;type:varchar(50)"`
	Activo        bool       `gorm:"column:activo;not null;default:true"`
	UltimoLogin   *time.Time `gorm:"column:ultimo_login"`
	FechaCreacion time.Time  `gorm:"column:fecha_creacion;autoCreateTime"`
}

func (Usuario) TableName() string { return "usuarios" }
