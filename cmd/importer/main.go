// Command importer загружает объявления об автомобилях из XLSX-книги в каталог.
//
//	importer -file ./data/cars.xlsx
//	importer -object uploads/cars.xlsx -replace=false
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maynagashev/autoassist/internal/config"
	"github.com/maynagashev/autoassist/internal/importer"
	"github.com/maynagashev/autoassist/internal/logging"
	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/repository"
	"github.com/maynagashev/autoassist/internal/services"
	"github.com/maynagashev/autoassist/internal/storage"
	"github.com/maynagashev/autoassist/internal/validation"
)

type options struct {
	file    string
	object  string
	replace bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Ошибка импорта", "error", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (*config.Config, *options, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	opts := &options{}
	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	cfg.BindFlags(fs)
	fs.StringVar(&opts.file, "file", "", "path to an .xlsx workbook")
	fs.StringVar(&opts.object, "object", "", "object key of a workbook in the MinIO bucket")
	fs.BoolVar(&opts.replace, "replace", true, "delete existing cars in the same transaction")
	if err = fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 1 && opts.file == "" && opts.object == "" {
		opts.file = fs.Arg(0)
	}

	switch {
	case opts.file == "" && opts.object == "":
		return nil, nil, errors.New("provide -file <path.xlsx> or -object <key>")
	case opts.file != "" && opts.object != "":
		return nil, nil, errors.New("-file and -object are mutually exclusive")
	case opts.object != "" && cfg.Minio.Endpoint == "":
		return nil, nil, errors.New("-object needs MINIO_ENDPOINT")
	}
	if err = cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, opts, nil
}

func run(args []string) error {
	cfg, opts, err := parseArgs(args)
	if err != nil {
		return err
	}

	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Storage, logging.Component(log, "storage"))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(context.Background()); closeErr != nil {
			log.Error("Ошибка закрытия хранилища", "error", closeErr)
		}
	}()

	var objects storage.FileStorage
	if cfg.Minio.Endpoint != "" {
		mc, minioErr := storage.NewMinioClient(ctx, cfg.Minio, logging.Component(log, "minio"))
		if minioErr != nil {
			return minioErr
		}
		objects = mc
	}

	validate := validation.New()
	cars := services.NewCarService(store.Cars(), validate, cfg.Storage.QueryTimeout, logging.Component(log, "cars"))
	im := importer.New(cars, validate, objects, logging.Component(log, "importer"))

	var report *models.ImportReport
	if opts.object != "" {
		report, err = im.ImportObject(ctx, opts.object, opts.replace)
	} else {
		report, err = im.ImportFile(ctx, opts.file, opts.replace)
	}
	if err != nil {
		return err
	}
	log.Info("Импорт завершен", "id", report.ID, "inserted", report.Inserted)
	return nil
}
