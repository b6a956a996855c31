package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bjorkvang/internal/domain"
	"bjorkvang/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter renders the booking schedule as an Excel workbook: one row
// per space, one column per day.
type Exporter struct {
	bookings domain.BookingService
	spaces   domain.SpaceService
	path     string
	logger   *zerolog.Logger
}

func NewExporter(bookings domain.BookingService, spaces domain.SpaceService, path string, logger *zerolog.Logger) *Exporter {
	if path == "" {
		path = "exports"
	}
	return &Exporter{bookings: bookings, spaces: spaces, path: path, logger: logger}
}

// ExportBookings writes the workbook for the date range and returns the
// file path.
func (e *Exporter) ExportBookings(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	dailyBookings, err := e.bookings.GetDailyBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	spaces := e.spaces.GetActiveSpaces()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookinger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Periode: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))

	dateHeaders := e.writeDateHeaders(f, sheetName, startDate, endDate)
	e.writeSpaceHeaders(f, sheetName, spaces)
	e.writeBookingData(f, sheetName, dailyBookings, spaces, dateHeaders)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	for i := 'B'; i <= 'Z'; i++ {
		_ = f.SetColWidth(sheetName, string(i), string(i), 24)
	}

	lastCol := getLastColumn(len(dateHeaders) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookinger_%s_til_%s.xlsx",
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel file created")
	return filePath, nil
}

func (e *Exporter) writeDateHeaders(f *excelize.File, sheetName string, startDate, endDate time.Time) map[string]int {
	col := 2
	currentDate := startDate
	dateHeaders := make(map[string]int)

	for !currentDate.After(endDate) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, currentDate.Format("02.01"))
		dateHeaders[currentDate.Format("2006-01-02")] = col

		style, _ := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		col++
		currentDate = currentDate.AddDate(0, 0, 1)
	}
	return dateHeaders
}

func (e *Exporter) writeSpaceHeaders(f *excelize.File, sheetName string, spaces []models.Space) {
	row := 3
	for _, space := range spaces {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, space.Name)

		style, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		row++
	}
}

func (e *Exporter) writeBookingData(
	f *excelize.File, sheetName string,
	dailyBookings map[string][]*models.Booking,
	spaces []models.Space,
	dateHeaders map[string]int,
) {
	for dateKey, bookings := range dailyBookings {
		col, exists := dateHeaders[dateKey]
		if !exists {
			continue
		}

		row := 3
		for _, space := range spaces {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			spaceBookings := bookingsForSpace(bookings, space.Name)

			var cellValue string
			if len(spaceBookings) > 0 {
				for _, b := range spaceBookings {
					cellValue += fmt.Sprintf("%s %s (%s-%s)\n",
						statusIcon(b.Status), b.Requester.Name,
						b.Start.Format("15:04"), b.End.Format("15:04"))
					if b.EventType != "" {
						cellValue += fmt.Sprintf("   %s\n", b.EventType)
					}
				}
			} else {
				cellValue = "Ledig"
			}

			_ = f.SetCellValue(sheetName, cell, cellValue)

			styleID, err := cellStyle(f, spaceBookings)
			if err == nil {
				_ = f.SetCellStyle(sheetName, cell, cell, styleID)
			}
			row++
		}
	}
}

// bookingsForSpace keeps the bookings that occupy the named space.
// Bookings with no space listed occupy the whole venue.
func bookingsForSpace(bookings []*models.Booking, spaceName string) []*models.Booking {
	var out []*models.Booking
	for _, b := range bookings {
		if !b.Blocks() {
			continue
		}
		if b.SharesSpace([]string{spaceName}) {
			out = append(out, b)
		}
	}
	return out
}

func statusIcon(status string) string {
	switch status {
	case models.StatusConfirmed, models.StatusApproved:
		return "✅"
	case models.StatusPending:
		return "⏳"
	case models.StatusBlocked:
		return "⛔"
	default:
		return "❓"
	}
}

func cellStyle(f *excelize.File, bookings []*models.Booking) (int, error) {
	fillColor := "#FFFFFF"
	if len(bookings) > 0 {
		fillColor = "#C6EFCE"
		for _, b := range bookings {
			if b.Status == models.StatusPending {
				fillColor = "#FFEB9C"
				break
			}
			if b.Status == models.StatusBlocked {
				fillColor = "#FFC7CE"
			}
		}
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "top",
			WrapText:   true,
		},
	})
}

func getLastColumn(colCount int) string {
	if colCount <= 26 {
		return string(rune('A' + colCount - 1))
	}

	firstChar := string(rune('A' + (colCount-1)/26 - 1))
	secondChar := string(rune('A' + (colCount-1)%26))
	return firstChar + secondChar
}
