// seedoperador creates an operator or resets its PIN.
// Usage: seedoperador -usuario ventas2 -rol SALES -pin 4321
package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"cipriano/internal/config"
	"cipriano/internal/infra"
	"cipriano/internal/model"
	"cipriano/internal/repository"
	"cipriano/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	usuario := flag.String("usuario", "", "username del operador")
	rol := flag.String("rol", model.OperadorVentas, "KITCHEN | SALES | BATCHES | ADMIN")
	pin := flag.String("pin", "", "PIN de login (min 4 digitos)")
	flag.Parse()

	if strings.TrimSpace(*usuario) == "" || *pin == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBLockTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	svc := service.NewAuthService(repository.NewOperadorRepository(db), cfg)
	op, err := svc.GuardarOperador(context.Background(), *usuario, strings.ToUpper(*rol), *pin)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo guardar el operador")
	}
	log.Info().Str("usuario", op.Username).Str("rol", op.Rol).Msg("operador creado/actualizado")
}
