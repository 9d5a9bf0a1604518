// Package legacy copies positions and prices out of the single-file SQLite
// database written by earlier versions of the tracker.
package legacy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tropicaldog17/folio/internal/db"
	apperrors "github.com/tropicaldog17/folio/internal/errors"
	"github.com/tropicaldog17/folio/internal/models"
	"github.com/tropicaldog17/folio/internal/repositories"
)

type legacyPosition struct {
	ID           int64
	Name         string
	Ticker       *string
	Type         *string
	Platform     *string
	Quantity     float64
	AvgCost      float64
	Currency     *string
	ISIN         *string  `gorm:"column:isin"`
	TER          *float64 `gorm:"column:ter"`
	PurchaseDate *string
	PriceSource  *string
	PriceSymbol  *string
	Notes        *string
}

type legacyPrice struct {
	ID       int64
	Ticker   string
	Price    float64
	Currency *string
	AsOf     string `gorm:"column:asof"`
	Source   *string
}

// Result summarises an import.
type Result struct {
	Positions int      `json:"positions"`
	Snapshots int      `json:"snapshots"`
	Skipped   []string `json:"skipped,omitempty"`
}

var (
	// ErrSameDatabase is returned when the legacy file is the store itself.
	ErrSameDatabase = errors.New("legacy database is the store being imported into")
	// ErrStoreNotEmpty is returned when the store already holds data; an
	// import only ever runs once, into an empty store.
	ErrStoreNotEmpty = errors.New("store already holds positions or prices")
)

type Importer struct {
	db     *db.DB
	logger *zap.Logger
}

// NewImporter creates an importer writing into database.
func NewImporter(database *db.DB, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{db: database, logger: logger}
}

// Import reads the legacy database at path without modifying it and copies
// its rows into the store in one transaction. Rows that cannot be represented
// are skipped and listed in the result; any store error rolls the whole
// import back.
func (im *Importer) Import(ctx context.Context, path string) (*Result, error) {
	same, err := im.isStoreFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, fmt.Errorf("%s: %w", path, ErrSameDatabase)
	}

	positions, prices, err := readLegacy(ctx, path)
	if err != nil {
		return nil, err
	}

	var res *Result
	err = im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err = im.copyRows(ctx, &db.DB{DB: tx}, positions, prices)
		return err
	})
	if err != nil {
		return nil, err
	}

	im.logger.Info("legacy import finished",
		zap.String("path", path),
		zap.Int("positions", res.Positions),
		zap.Int("snapshots", res.Snapshots),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func readLegacy(ctx context.Context, path string) ([]legacyPosition, []legacyPrice, error) {
	src, err := gorm.Open(sqlite.Open("file:"+path+"?mode=ro"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	if sqlDB, err := src.DB(); err == nil {
		defer sqlDB.Close()
	}

	var positions []legacyPosition
	if err := src.WithContext(ctx).Raw("SELECT * FROM positions ORDER BY id").Scan(&positions).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to read legacy positions: %w", err)
	}
	var prices []legacyPrice
	if err := src.WithContext(ctx).Raw("SELECT id, ticker, price, currency, asof, source FROM prices ORDER BY asof, id").Scan(&prices).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to read legacy prices: %w", err)
	}
	return positions, prices, nil
}

// copyRows writes the legacy rows through repositories bound to the transaction.
func (im *Importer) copyRows(ctx context.Context, store *db.DB, positions []legacyPosition, prices []legacyPrice) (*Result, error) {
	var held, priced int64
	if err := store.WithContext(ctx).Model(&models.Position{}).Count(&held).Error; err != nil {
		return nil, fmt.Errorf("failed to count positions: %w", err)
	}
	if err := store.WithContext(ctx).Model(&models.PriceSnapshot{}).Count(&priced).Error; err != nil {
		return nil, fmt.Errorf("failed to count price snapshots: %w", err)
	}
	if held > 0 || priced > 0 {
		return nil, ErrStoreNotEmpty
	}

	positionRepo := repositories.NewPositionRepository(store)
	snapshotRepo := repositories.NewSnapshotRepository(store)

	res := &Result{}
	bySymbol := make(map[string]uint)
	for _, lp := range positions {
		p := im.convertPosition(lp)
		if err := positionRepo.Create(ctx, p); err != nil {
			if !apperrors.IsValidation(err) {
				return nil, err
			}
			res.Skipped = append(res.Skipped, fmt.Sprintf("position %d (%s): %v", lp.ID, lp.Name, err))
			continue
		}
		res.Positions++
		if _, ok := bySymbol[p.SnapshotSymbol()]; !ok {
			bySymbol[p.SnapshotSymbol()] = p.ID
		}
	}

	for _, lp := range prices {
		asOf, err := time.Parse("2006-01-02", strings.TrimSpace(lp.AsOf))
		if err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("price %d (%s): bad date %q", lp.ID, lp.Ticker, lp.AsOf))
			continue
		}
		snap := &models.PriceSnapshot{
			Symbol:   lp.Ticker,
			Price:    decimal.NewFromFloat(lp.Price),
			Currency: str(lp.Currency),
			AsOf:     asOf,
			Source:   providerLabel(str(lp.Source)),
		}
		if err := snap.Validate(); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("price %d (%s): %v", lp.ID, lp.Ticker, err))
			continue
		}
		if id, ok := bySymbol[lp.Ticker]; ok {
			snap.PositionID = &id
		}
		if err := snapshotRepo.Insert(ctx, snap); err != nil {
			return nil, err
		}
		res.Snapshots++
	}
	return res, nil
}

// databaseFile is a row of PRAGMA database_list
type databaseFile struct {
	Seq  int
	Name string
	File string
}

// isStoreFile reports whether path is the SQLite file backing the store.
func (im *Importer) isStoreFile(ctx context.Context, path string) (bool, error) {
	if im.db.Dialector.Name() != "sqlite" {
		return false, nil
	}
	var files []databaseFile
	if err := im.db.WithContext(ctx).Raw("PRAGMA database_list").Scan(&files).Error; err != nil {
		return false, fmt.Errorf("failed to locate store file: %w", err)
	}
	src, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to open legacy database: %w", err)
	}
	for _, f := range files {
		if f.Name != "main" || f.File == "" {
			continue
		}
		if st, err := os.Stat(f.File); err == nil && os.SameFile(src, st) {
			return true, nil
		}
	}
	return false, nil
}

// convertPosition maps a legacy row; unknown type or source labels are dropped
// to unset and manual so the row still imports.
func (im *Importer) convertPosition(lp legacyPosition) *models.Position {
	p := &models.Position{
		Name:        lp.Name,
		Ticker:      str(lp.Ticker),
		Platform:    str(lp.Platform),
		Quantity:    decimal.NewFromFloat(lp.Quantity),
		AvgCost:     decimal.NewFromFloat(lp.AvgCost),
		Currency:    str(lp.Currency),
		ISIN:        str(lp.ISIN),
		PriceSymbol: strings.TrimSpace(str(lp.PriceSymbol)),
		Notes:       str(lp.Notes),
	}
	if lp.TER != nil {
		ter := decimal.NewFromFloat(*lp.TER)
		p.ExpenseRatio = &ter
	}
	if d := strings.TrimSpace(str(lp.PurchaseDate)); d != "" {
		if _, err := time.Parse("2006-01-02", d); err == nil {
			p.PurchaseDate = &d
		}
	}
	if t, err := models.ParsePositionType(str(lp.Type)); err == nil {
		p.Type = t
	} else {
		im.logger.Warn("dropping unknown position type", zap.Int64("legacy_id", lp.ID), zap.String("type", str(lp.Type)))
	}
	if s, err := models.ParsePriceSource(str(lp.PriceSource)); err == nil {
		p.PriceSource = s
	} else {
		im.logger.Warn("unknown price source, using manual", zap.Int64("legacy_id", lp.ID), zap.String("source", str(lp.PriceSource)))
		p.PriceSource = models.PriceSourceManual
	}
	return p
}

// providerLabel renames the provider labels older versions wrote into
// snapshots ("yahoo", "coingecko") to the current feed names.
func providerLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.SourceManual
	}
	if src, err := models.ParsePriceSource(s); err == nil {
		return string(src)
	}
	return s
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
