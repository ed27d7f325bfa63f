// seed_params genera el script SQL con el catálogo inicial de productos de crédito, tasas y
// documentos requeridos a partir del XML heredado (ISO-8859-1).
//
// Uso: go run ./cmd/seed_params [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/900_seed_catalog.sql
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhoicas/parametros-credito/pkg/logger"
)

func main() {
	xmlPath := "catalogo.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}

	log := logger.New(logger.Config{Env: "development", Level: "warn"})

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := decodeCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	res, err := loadCatalog(context.Background(), cat, log.Component("seed"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo inválido: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "900_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, res, filepath.Base(xmlPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	var nRates, nDocs int
	for _, p := range res.Products {
		nRates += len(res.Rates[p.ID])
		nDocs += len(res.Documents[p.ID])
	}
	fmt.Printf("Generado %s: %d productos, %d tasas, %d documentos\n", outPath, len(res.Products), nRates, nDocs)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
