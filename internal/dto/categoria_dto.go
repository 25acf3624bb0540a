package dto

type CategoriaResponse struct {
	IDCategoria int64   `json:"idcategoria"`
	Nombre      string  `json:"nombre"`
	Slug        string  `json:"slug"`
	Descripcion *string `json:"descripcion,omitempty"`
	Estado      bool    `json:"estado"`
}
