package main

import (
	"flag"
	"fmt"

	"github.com/maynagashev/autoassist/internal/config"
)

// parseFlags загружает окружение, применяет переопределения из аргументов командной строки
// и проверяет результат. Приоритет: флаг, затем переменная окружения, затем значение по умолчанию.
func parseFlags(args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err = fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
