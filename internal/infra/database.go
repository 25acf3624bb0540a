package infra

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx and applies the schema.
// The schema is owned by the idempotent DDL below, not by AutoMigrate, so the
// ledger constraints (cantidad > 0, tipo enumeration, RESTRICT on variant
// delete) live in the database itself.
func NewDatabase(dsn string, maxOpenConns int, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

// schema creates every table the API touches. Each statement is idempotent so
// re-running on an existing database is a no-op.
var schema = []struct{ descr, sql string }{
	{"categorias", `
CREATE TABLE IF NOT EXISTS categorias (
  idcategoria    BIGSERIAL PRIMARY KEY,
  nombre         VARCHAR(150) NOT NULL,
  slug           VARCHAR(150) NOT NULL UNIQUE,
  descripcion    TEXT,
  estado         BOOLEAN NOT NULL DEFAULT TRUE,
  fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"proveedores", `
CREATE TABLE IF NOT EXISTS proveedores (
  idproveedor BIGSERIAL PRIMARY KEY,
  nombre      TEXT NOT NULL,
  telefono    TEXT,
  email       TEXT,
  direccion   TEXT,
  cuit        TEXT UNIQUE,
  estado      BOOLEAN NOT NULL DEFAULT TRUE
)`},
	{"productos", `
CREATE TABLE IF NOT EXISTS productos (
  idproducto   BIGSERIAL PRIMARY KEY,
  nombre       TEXT NOT NULL,
  preciocompra NUMERIC(12,2),
  precioventa  NUMERIC(12,2),
  stockminimo  INT,
  fechaingreso DATE NOT NULL DEFAULT CURRENT_DATE,
  descripcion  TEXT,
  estado       BOOLEAN NOT NULL DEFAULT TRUE,
  idcategoria  BIGINT REFERENCES categorias(idcategoria),
  idproveedor  BIGINT REFERENCES proveedores(idproveedor)
)`},
	{"producto_variantes", `
CREATE TABLE IF NOT EXISTS producto_variantes (
  idvariante     BIGSERIAL PRIMARY KEY,
  idproducto     BIGINT NOT NULL REFERENCES productos(idproducto),
  sku            VARCHAR(100) UNIQUE,
  codigo_barras  VARCHAR(100) UNIQUE,
  precio_compra  NUMERIC(12,2),
  precio_venta   NUMERIC(12,2),
  stock_minimo   INT NOT NULL DEFAULT 0 CHECK (stock_minimo >= 0),
  estado         BOOLEAN NOT NULL DEFAULT TRUE,
  fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"atributos", `
CREATE TABLE IF NOT EXISTS atributos (
  idatributo     BIGSERIAL PRIMARY KEY,
  nombre         VARCHAR(150) NOT NULL,
  slug           VARCHAR(150) NOT NULL UNIQUE,
  tipo_dato      VARCHAR(30) NOT NULL,
  es_obligatorio BOOLEAN NOT NULL DEFAULT FALSE,
  orden          INT NOT NULL DEFAULT 0,
  activo         BOOLEAN NOT NULL DEFAULT TRUE,
  fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"variante_valores", `
CREATE TABLE IF NOT EXISTS variante_valores (
  idvariante     BIGINT NOT NULL REFERENCES producto_variantes(idvariante) ON DELETE CASCADE,
  idatributo     BIGINT NOT NULL REFERENCES atributos(idatributo),
  valor_texto    TEXT,
  valor_numero   NUMERIC,
  valor_booleano BOOLEAN,
  idopcion       BIGINT,
  PRIMARY KEY (idvariante, idatributo)
)`},
	{"usuarios", `
CREATE TABLE IF NOT EXISTS usuarios (
  idusuario      BIGSERIAL PRIMARY KEY,
  username       VARCHAR(150) NOT NULL UNIQUE,
  password_hash  TEXT NOT NULL,
  email          VARCHAR(255),
  dni_empleado   TEXT UNIQUE,
  rol            VARCHAR(50),
  activo         BOOLEAN NOT NULL DEFAULT TRUE,
  ultimo_login   TIMESTAMPTZ,
  fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT now()
)`},
	{"movimientos_stock", `
CREATE TABLE IF NOT EXISTS movimientos_stock (
  idmovimiento    BIGSERIAL PRIMARY KEY,
  idvariante      BIGINT NOT NULL REFERENCES producto_variantes(idvariante) ON DELETE RESTRICT,
  tipo            VARCHAR(20) NOT NULL,
  cantidad        INT NOT NULL,
  referencia_id   BIGINT,
  referencia_tipo VARCHAR(50),
  descripcion     TEXT,
  idempleado      BIGINT,
  fecha           TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT movimientos_stock_cantidad_check CHECK (cantidad > 0),
  CONSTRAINT movimientos_stock_tipo_check CHECK (tipo IN ('ENTRADA','SALIDA','AJUSTE'))
)`},
	{"idx_movimientos_stock_variante", `
CREATE INDEX IF NOT EXISTS idx_movimientos_stock_variante
    ON movimientos_stock (idvariante, fecha DESC)`},
	// Databases created by the old ORM schema have the variant FK with
	// ON DELETE CASCADE; swap it for RESTRICT.
	{"movimientos_stock FK restrict", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint
             WHERE conname = 'movimientos_stock_idvariante_fkey' AND confdeltype = 'c') THEN
    ALTER TABLE movimientos_stock DROP CONSTRAINT movimientos_stock_idvariante_fkey;
    ALTER TABLE movimientos_stock
      ADD CONSTRAINT movimientos_stock_idvariante_fkey
      FOREIGN KEY (idvariante) REFERENCES producto_variantes(idvariante) ON DELETE RESTRICT;
  END IF;
END $$`},
	{"movimientos_stock tipo check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'movimientos_stock_tipo_check') THEN
    ALTER TABLE movimientos_stock
      ADD CONSTRAINT movimientos_stock_tipo_check CHECK (tipo IN ('ENTRADA','SALIDA','AJUSTE'));
  END IF;
END $$`},
}

// RunMigrations applies the schema. Integration tests call it directly on a
// fresh container database.
func RunMigrations(db *gorm.DB) error {
	for _, s := range schema {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("migration %q: %w", s.descr, err)
		}
	}
	return nil
}
