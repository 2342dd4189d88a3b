// Package importer загружает объявления об автомобилях из XLSX-таблиц в каталог.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/maynagashev/autoassist/internal/models"
	"github.com/maynagashev/autoassist/internal/storage"
	"github.com/maynagashev/autoassist/internal/validation"
)

// ErrNoValidRows возвращается, если ни одна строка листа не превратилась в автомобиль.
// Каталог при этом не изменяется.
var ErrNoValidRows = errors.New("no valid car records in workbook")

// ErrNoObjectStorage возвращается из ImportObject, если бакет не настроен.
var ErrNoObjectStorage = errors.New("object storage is not configured")

const reportPrefix = "reports"

// CarWriter сохраняет импортированные автомобили. Реализуется services.CarService.
type CarWriter interface {
	BulkInsert(ctx context.Context, cars []models.Car) (int, error)
	ReplaceAll(ctx context.Context, cars []models.Car) (int64, error)
}

// Importer читает книгу, преобразует и проверяет строки и записывает их
// одним пакетом по принципу "все или ничего".
type Importer struct {
	cars     CarWriter
	validate *validation.Validator
	objects  storage.FileStorage // необязательно
	log      *slog.Logger
	now      func() time.Time
	newID    func() uuid.UUID
}

// New создает Importer. objects может быть nil, тогда отчеты только
// пишутся в лог, а ImportObject недоступен.
func New(cars CarWriter, validate *validation.Validator, objects storage.FileStorage, log *slog.Logger) *Importer {
	return &Importer{
		cars:     cars,
		validate: validate,
		objects:  objects,
		log:      log,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// ImportFile импортирует книгу из локальной файловой системы.
func (im *Importer) ImportFile(ctx context.Context, filename string, replace bool) (*models.ImportReport, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()
	return im.Import(ctx, filename, f, replace)
}

// ImportObject импортирует книгу, хранящуюся в бакете по ключу key.
func (im *Importer) ImportObject(ctx context.Context, key string, replace bool) (*models.ImportReport, error) {
	if im.objects == nil {
		return nil, ErrNoObjectStorage
	}
	rc, err := im.objects.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()
	return im.Import(ctx, "s3://"+key, rc, replace)
}

// Import выполняет весь импорт одной книги. В режиме замены существующие
// автомобили удаляются в той же транзакции, что и вставка.
func (im *Importer) Import(ctx context.Context, source string, r io.Reader, replace bool) (*models.ImportReport, error) {
	report := &models.ImportReport{
		ID:        im.newID().String(),
		Source:    source,
		StartedAt: im.now().UTC(),
	}
	log := im.log.With("import_id", report.ID, "source", source)

	rows, err := ReadWorkbook(r)
	if err != nil {
		return nil, err
	}
	report.Rows = len(rows)
	log.Info("Книга прочитана", "rows", report.Rows)

	requests := MapRows(rows)
	report.Mapped = len(requests)

	cars := make([]models.Car, 0, len(requests))
	for i := range requests {
		if err := im.validate.Struct(&requests[i]); err != nil {
			report.Skipped++
			log.Debug("Строка пропущена", "brand", requests[i].Brand, "model", requests[i].Model, "error", err)
			continue
		}
		car := requests[i].ToCar()
		car.Clean()
		cars = append(cars, *car)
	}
	if len(cars) == 0 {
		return nil, ErrNoValidRows
	}

	if replace {
		report.Replaced, err = im.cars.ReplaceAll(ctx, cars)
		if err == nil {
			report.Inserted = len(cars)
		}
	} else {
		report.Inserted, err = im.cars.BulkInsert(ctx, cars)
	}
	if err != nil {
		return nil, fmt.Errorf("write cars: %w", err)
	}
	report.FinishedAt = im.now().UTC()

	log.Info("Импорт выполнен",
		"mapped", report.Mapped,
		"skipped", report.Skipped,
		"inserted", report.Inserted,
		"replaced", report.Replaced,
	)
	im.uploadReport(ctx, report)
	return report, nil
}

// ReportKey возвращает ключ объекта, под которым хранится отчет.
func ReportKey(id string) string {
	return path.Join(reportPrefix, "import-"+id+".json")
}

// uploadReport сохраняет отчет в JSON. Ошибки только логируются, импорт
// к этому моменту уже зафиксирован.
func (im *Importer) uploadReport(ctx context.Context, report *models.ImportReport) {
	if im.objects == nil {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		im.log.Error("Ошибка кодирования отчета об импорте", "error", err)
		return
	}
	key := ReportKey(report.ID)
	if err := im.objects.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		im.log.Warn("Ошибка загрузки отчета об импорте", "key", key, "error", err)
		return
	}
	im.log.Info("Отчет об импорте загружен", "key", key)
}
