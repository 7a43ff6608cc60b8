package container

import (
	"database/sql"
	"time"

	auditLogRepo "itinventory/internal/auditlog"
	"itinventory/internal/inventory/assets"
	"itinventory/internal/inventory/catalog"
	"itinventory/internal/inventory/history"
	"itinventory/internal/inventory/purchaseorders"
	"itinventory/internal/inventory/software"
	"itinventory/internal/inventory/tags"
	"itinventory/internal/inventory/vendors"
	"itinventory/internal/rate_limiter"
	"itinventory/internal/reports"
	"itinventory/internal/repository"
	"itinventory/internal/users"
	"itinventory/pkg/auditlog"
	"itinventory/pkg/security"

	"go.uber.org/zap"
)

type Options struct {
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type Container struct {
	DB                   *sql.DB
	Repository           *repository.Repository
	AuditLog             *auditlog.Auditlog
	LoginHandler         *security.LoginHandler
	AssetHandler         *assets.AssetHandler
	PurchaseOrderHandler *purchaseorders.PurchaseOrderHandler
	VendorHandler        *vendors.VendorHandler
	CatalogHandler       *catalog.CatalogHandler
	SoftwareHandler      *software.SoftwareHandler
	TagsHandler          *tags.TagsHandler
	HistoryHandler       *history.HistoryHandler
	AuditLogHandler      *auditLogRepo.Handler
	UserHandler          *users.UsersHandler
	ReportsHandler       *reports.ReportsHandler
}

func NewAppContainer(db *sql.DB, opts Options, logger *zap.Logger) *Container {
	repo := repository.NewRepository(db)
	auditLogRepository := auditLogRepo.NewRepository(repo)
	auditLog := auditlog.NewAuditLog(auditLogRepository, logger)

	assetRepo := assets.NewRepository(repo)
	poRepo := purchaseorders.NewRepository(repo)
	vendorRepo := vendors.NewRepository(repo)
	catalogRepo := catalog.NewRepository(repo)
	softwareRepo := software.NewRepository(repo)
	tagsRepo := tags.NewRepository(repo)
	historyRepo := history.NewRepository(repo)
	userRepo := users.NewRepository(repo)

	tagService := tags.NewService(tagsRepo, repo, repo, auditLog)
	validator := assets.NewValidator(assetRepo, poRepo, softwareRepo, catalogRepo, catalogRepo, repo, logger)
	assetService := assets.NewAssetService(assetRepo, repo, validator, repo, historyRepo, tagService, auditLog, logger)
	poService := purchaseorders.NewService(poRepo, repo, repo, auditLog, logger)

	limiter := rate_limiter.NewRateLimiter(opts.LoginRateLimit, opts.LoginRateWindow)

	return &Container{
		DB:                   db,
		Repository:           repo,
		AuditLog:             auditLog,
		LoginHandler:         security.NewLoginHandler(repo, limiter, logger),
		AssetHandler:         assets.NewAssetHandler(assetService),
		PurchaseOrderHandler: purchaseorders.NewHandler(poService),
		VendorHandler:        vendors.NewHandler(vendorRepo, auditLog),
		CatalogHandler:       catalog.NewHandler(catalogRepo, auditLog),
		SoftwareHandler:      software.NewHandler(softwareRepo, auditLog),
		TagsHandler:          tags.NewHandler(tagService),
		HistoryHandler:       history.NewHandler(historyRepo),
		AuditLogHandler:      auditLogRepo.NewHandler(auditLogRepository),
		UserHandler:          users.NewHandler(userRepo, auditLog, logger),
		ReportsHandler:       reports.NewHandler(reports.NewAssetReport(assetRepo, tagsRepo), logger),
	}
}
