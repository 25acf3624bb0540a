// cmd/seeduser/main.go: crea/actualiza un usuario.
// Uso: go run ./cmd/seeduser -username admin -password secreto -rol administrador
package main

import (
	"context"
	"flag"
	"os"

	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/infra"
	"github.com/Kotjrz/Pos-Stock-Facturacion/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	username := flag.String("username", "admin", "nombre de usuario")
	password := flag.String("password", "", "password en texto plano")
	rol := flag.String("rol", "administrador", "administrador | encargado | vendedor")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password es obligatorio")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL no configurada")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	db, err := infra.NewDatabase(dsn, 2, false)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, password_hash, rol, activo)
		VALUES (?, ?, ?, true)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    rol = EXCLUDED.rol,
		    activo = true
	`, *username, hash, *rol)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert error")
	}
	log.Info().Str("username", *username).Str("rol", *rol).Msg("usuario creado/actualizado")
}
