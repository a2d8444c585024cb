// token emite el JWT de una estación (goods-in, goods-out) firmado con JWT_SECRET.
//
// Uso: go run ./cmd/token -station goods-in-01 [-role operator|supervisor] [-minutes 720]
// Lee JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES de la misma configuración que la API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func main() {
	station := flag.String("station", "", "identificador de la estación")
	role := flag.String("role", jwt.RoleOperator, "rol: operator | supervisor")
	minutes := flag.Int("minutes", 0, "validez en minutos (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *station == "" {
		fmt.Fprintln(os.Stderr, "falta -station")
		os.Exit(2)
	}
	if *role != jwt.RoleOperator && *role != jwt.RoleSupervisor {
		fmt.Fprintf(os.Stderr, "rol desconocido %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	exp := cfg.JWT.Expiration
	if *minutes > 0 {
		exp = *minutes
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *station, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
