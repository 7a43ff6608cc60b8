package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"itinventory/internal/repository"
	"itinventory/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	sheetName  = "Assets"
	dateLayout = "2006-01-02"
)

var assetReportHeader = []string{
	"ID", "IT Asset Code", "Name", "Serial Number", "Status",
	"Type", "Make", "Model", "OS", "OS Version",
	"Vendor", "Extended Warranty Vendor", "Purchase Order", "Current User",
	"MAC Address", "IP Address", "Purchase Date", "Warranty Expiry",
	"Extended Warranty Expiry", "Purchase Cost", "Tags", "Deleted",
}

type AssetSource interface {
	GetAssetsForReport(ctx context.Context, conditions repository.QueryBuilder) ([]models.Asset, error)
}

type TagSource interface {
	GetTagsForAssets(ctx context.Context, assetIDs []int) (map[int][]models.AssetTag, error)
}

type AssetReport struct {
	source AssetSource
	tags   TagSource
}

func NewAssetReport(source AssetSource, tags TagSource) *AssetReport {
	return &AssetReport{source: source, tags: tags}
}

// Rows returns the header followed by one row per asset matching conditions.
func (r *AssetReport) Rows(ctx context.Context, conditions repository.QueryBuilder) ([][]string, error) {
	assets, err := r.source.GetAssetsForReport(ctx, conditions)
	if err != nil {
		return nil, fmt.Errorf("unable to load assets for report: %w", err)
	}

	ids := make([]int, len(assets))
	for i, asset := range assets {
		ids[i] = asset.ID
	}
	tags, err := r.tags.GetTagsForAssets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("unable to load tags for report: %w", err)
	}
	for i := range assets {
		assets[i].Tags = tags[assets[i].ID]
	}

	rows := make([][]string, 0, len(assets)+1)
	rows = append(rows, assetReportHeader)
	for _, asset := range assets {
		rows = append(rows, assetRow(asset))
	}

	return rows, nil
}

func (r *AssetReport) Write(ctx context.Context, w io.Writer, format string, conditions repository.QueryBuilder) error {
	rows, err := r.Rows(ctx, conditions)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("unable to write csv report: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("unable to name sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("unable to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("unable to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write xlsx report: %w", err)
	}
	return nil
}

func assetRow(a models.Asset) []string {
	var purchaseOrder, currentUser string
	if a.PurchaseOrder != nil {
		purchaseOrder = a.PurchaseOrder.PONumber
	}
	if a.CurrentUser != nil {
		currentUser = a.CurrentUser.Fullname
		if currentUser == "" {
			currentUser = a.CurrentUser.Username
		}
	}

	var cost string
	if a.PurchaseCost.Valid {
		cost = a.PurchaseCost.Decimal.StringFixed(2)
	}

	tags := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		tags = append(tags, t.Name)
	}

	return []string{
		strconv.Itoa(a.ID),
		a.ITAssetCode,
		a.Name,
		a.SerialNumber,
		string(a.Status),
		refName(a.Type),
		refName(a.Make),
		refName(a.Model),
		refName(a.OS),
		refName(a.OSVersion),
		refName(a.Vendor),
		refName(a.ExtendedWarrantyVendor),
		purchaseOrder,
		currentUser,
		a.MacAddress,
		a.IPAddress,
		formatDate(a.PurchaseDate),
		formatDate(a.WarrantyExpiry),
		formatDate(a.ExtendedWarrantyExpiry),
		cost,
		strings.Join(tags, ", "),
		strconv.FormatBool(a.Deleted),
	}
}

func refName(ref *models.Reference) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
