package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"socialconnect/config"
	"socialconnect/database"
	"socialconnect/middleware"
	"socialconnect/models"
	"socialconnect/prestation"
)

type ExportHandler struct {
	config *config.Config
	log    *zap.Logger
}

func NewExportHandler(cfg *config.Config, log *zap.Logger) *ExportHandler {
	return &ExportHandler{config: cfg, log: log}
}

// motifCodes maps motif labels to the official bilingual employer codes.
var motifCodes = map[string]string{
	prestation.MotifPresence:       "P/A",
	prestation.MotifTeletravail:    "TT",
	prestation.MotifCongeVA:        "C/V",
	prestation.MotifCongeCH:        "C/V",
	prestation.MotifMaladie:        "M/Z",
	prestation.MotifJourFerie:      "JF/FD",
	prestation.MotifFormation:      "F/V",
	prestation.MotifReunionExterne: "P/A",
	prestation.MotifHeuresSupp:     "P/A",
	"Congé":                        "C/V",
	"Prestation normale":           "P/A",
}

var monthNames = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var monthNamesBilingual = []string{
	"JANVIER/JANUARI", "FÉVRIER/FEBRUARI", "MARS/MAART", "AVRIL/APRIL",
	"MAI/MEI", "JUIN/JUNI", "JUILLET/JULI", "AOÛT/AUGUSTUS",
	"SEPTEMBRE/SEPTEMBER", "OCTOBRE/OKTOBER", "NOVEMBRE/NOVEMBER", "DÉCEMBRE/DECEMBER",
}

// CSV streams one month of prestations for the whole service. Admin only.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.CanExport() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "month invalide")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		respondError(w, http.StatusBadRequest, "year invalide")
		return
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, 0)

	var entries []models.Prestation
	err = database.GetDB().Preload("Gestionnaire").
		Where("service_id = ? AND date >= ? AND date < ?", gestionnaire.ServiceID, startDate, endDate).
		Order("date asc, gestionnaire_id asc").
		Find(&entries).Error
	if err != nil {
		h.log.Error("export query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	filename := fmt.Sprintf("prestations_%d_%02d.csv", year, month)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Gestionnaire", "Date", "Début", "Fin", "Pause", "Motif", "Durée nette", "Bonis", "Heures supp", "Commentaire"})

	for _, entry := range entries {
		name := ""
		if entry.Gestionnaire != nil {
			name = entry.Gestionnaire.DisplayName()
		}
		overtime := ""
		if entry.IsOvertime {
			overtime = "oui"
		}
		writer.Write([]string{
			name,
			entry.Date.Format("2006-01-02"),
			entry.HeureDebut,
			entry.HeureFin,
			strconv.Itoa(entry.Pause),
			entry.Motif,
			prestation.FormatMinutes(entry.DureeNet),
			prestation.FormatMinutes(entry.Bonis),
			overtime,
			entry.Commentaire,
		})
	}
}

// Official generates the employer's yearly workbook: one sheet per month,
// one row per gestionnaire, one column per day, cells carrying the bilingual
// motif code. Admin only.
func (h *ExportHandler) Official(w http.ResponseWriter, r *http.Request) {
	gestionnaire := middleware.GetGestionnaireFromContext(r.Context())
	if gestionnaire == nil {
		respondError(w, http.StatusUnauthorized, "Non authentifié")
		return
	}
	if !gestionnaire.CanExport() {
		respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
		return
	}

	year := time.Now().UTC().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			respondError(w, http.StatusBadRequest, "year invalide")
			return
		}
		year = parsed
	}

	yearStart, yearEnd := prestation.YearWindow(year)

	var entries []models.Prestation
	err := database.GetDB().
		Where("service_id = ? AND date >= ? AND date < ?", gestionnaire.ServiceID, yearStart, yearEnd).
		Order("date asc").
		Find(&entries).Error
	if err != nil {
		h.log.Error("official export query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	var staff []models.Gestionnaire
	err = database.GetDB().
		Where("service_id = ?", gestionnaire.ServiceID).
		Order("prenom asc").
		Find(&staff).Error
	if err != nil {
		h.log.Error("official export staff query failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	// (gestionnaire, month, day) -> code
	codes := make(map[string]string, len(entries))
	for _, entry := range entries {
		d := entry.Date.UTC()
		code, ok := motifCodes[entry.Motif]
		if !ok {
			code = "P/A"
		}
		codes[cellKey(entry.GestionnaireID.String(), int(d.Month()), d.Day())] = code
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E3A5F"}},
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	for month := 1; month <= 12; month++ {
		sheet := monthNames[month-1]
		if _, err := f.NewSheet(sheet); err != nil {
			respondError(w, http.StatusInternalServerError, "Erreur serveur")
			return
		}

		daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

		lastCol, _ := excelize.ColumnNumberToName(daysInMonth + 1)
		f.MergeCell(sheet, "A1", lastCol+"1")
		f.SetCellValue(sheet, "A1", monthNamesBilingual[month-1])
		f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

		f.SetCellValue(sheet, "A2", "Gestionnaire")
		for day := 1; day <= daysInMonth; day++ {
			col, _ := excelize.ColumnNumberToName(day + 1)
			f.SetCellValue(sheet, col+"2", day)
		}

		for i, g := range staff {
			row := i + 3
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), g.DisplayName())
			for day := 1; day <= daysInMonth; day++ {
				code, ok := codes[cellKey(g.ID.String(), month, day)]
				if !ok {
					continue
				}
				col, _ := excelize.ColumnNumberToName(day + 1)
				f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), code)
			}
		}
	}

	f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("prestations_officiel_%d.xlsx", year)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := f.WriteTo(w); err != nil {
		h.log.Error("writing workbook failed", zap.Error(err))
	}
}

func cellKey(gestionnaireID string, month, day int) string {
	return fmt.Sprintf("%s/%02d/%02d", gestionnaireID, month, day)
}
